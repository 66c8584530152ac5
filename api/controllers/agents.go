package controllers

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	agentsvc "github.com/greenbasket/greenbasket-backend/internal/agents"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// AgentSignup is the public onboarding endpoint; accounts stay pending
// until an admin approves them.
func AgentSignup(svc agentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload agentsvc.SignupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Signup(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, agent)
	}
}

// AgentProfile returns the calling agent's own record.
func AgentProfile(svc agentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID := middleware.AgentIDFromContext(r.Context())
		agent, err := svc.Profile(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

type photoPresignRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

// AgentPhotoPresign hands the agent a short-lived PUT URL for their
// profile photo.
func AgentPhotoPresign(svc agentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload photoPresignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		upload, err := svc.PhotoUploadURL(r.Context(), middleware.AgentIDFromContext(r.Context()), payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, upload)
	}
}

type setPhotoRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
}

// AgentSetPhoto records the uploaded object as the agent's photo.
func AgentSetPhoto(svc agentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setPhotoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agentID := middleware.AgentIDFromContext(r.Context())
		if err := svc.SetPhoto(r.Context(), agentID, payload.ObjectKey); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Profile(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

// AgentUpdateCapacity changes the caller's concurrent-delivery limit.
func AgentUpdateCapacity(svc agentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload agentsvc.UpdateCapacityInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agentID := middleware.AgentIDFromContext(r.Context())
		if err := svc.UpdateCapacity(r.Context(), agentID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"max_deliveries": payload.MaxDeliveries})
	}
}
