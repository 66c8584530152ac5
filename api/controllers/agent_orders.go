package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	fulfillmentsvc "github.com/greenbasket/greenbasket-backend/internal/fulfillment"
	orderssvc "github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// AgentOrders lists the caller's undelivered assignments.
func AgentOrders(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.AgentDashboard(r.Context(), middleware.AgentIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AgentRoute lists today's pending stops for the caller.
func AgentRoute(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stops, err := svc.DailyRoute(r.Context(), middleware.AgentIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stops)
	}
}

type completeDeliveriesRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
}

type completeDeliveriesResponse struct {
	EntriesDelivered int         `json:"entries_delivered"`
	OrdersCompleted  int         `json:"orders_completed"`
	SkippedOrderIDs  []uuid.UUID `json:"skipped_order_ids,omitempty"`
}

// AgentCompleteDeliveries marks today's schedule entries delivered for a
// batch of the caller's orders.
func AgentCompleteDeliveries(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload completeDeliveriesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CompleteDeliveries(r.Context(), fulfillmentsvc.CompleteDeliveriesInput{
			AgentID:  middleware.AgentIDFromContext(r.Context()),
			OrderIDs: payload.OrderIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, completeDeliveriesResponse{
			EntriesDelivered: result.EntriesDelivered,
			OrdersCompleted:  result.OrdersCompleted,
			SkippedOrderIDs:  result.SkippedOrderIDs,
		})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AgentUpdateOrderStatus moves one assigned order between states.
func AgentUpdateOrderStatus(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		if err := svc.UpdateOrderStatus(r.Context(), fulfillmentsvc.UpdateOrderStatusInput{
			AgentID: middleware.AgentIDFromContext(r.Context()),
			OrderID: orderID,
			Status:  status,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
