package agents

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// SignupRequest onboards a new delivery agent; the account starts in
// pending approval and cannot take orders until an admin approves it.
type SignupRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8"`
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Phone         string  `json:"phone" validate:"required,min=10"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
}

// AgentDTO is the wire shape for agent records.
type AgentDTO struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Status           enums.AgentStatus `json:"status"`
	VehicleNumber    *string           `json:"vehicle_number,omitempty"`
	PhotoURL         *string           `json:"photo_url,omitempty"`
	MaxDeliveries    *int              `json:"max_deliveries,omitempty"`
	ActiveOrderCount int               `json:"active_order_count"`
	Areas            []AreaSummary     `json:"areas,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// AreaSummary names a zone the agent covers.
type AreaSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city"`
}

// PhotoUploadDTO is a presigned PUT target for the agent's photo.
type PhotoUploadDTO struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
	ExpiresAt string `json:"expires_at"`
}

// UpdateCapacityInput changes how many concurrent orders the agent takes.
type UpdateCapacityInput struct {
	MaxDeliveries int `json:"max_deliveries" validate:"required,min=1,max=100"`
}

func fromModel(agent *models.DeliveryAgent, photoURL *string) *AgentDTO {
	dto := &AgentDTO{
		ID:               agent.ID,
		UserID:           agent.UserID,
		Phone:            agent.Phone,
		Status:           agent.Status,
		VehicleNumber:    agent.VehicleNumber,
		PhotoURL:         photoURL,
		MaxDeliveries:    agent.MaxDeliveries,
		ActiveOrderCount: agent.ActiveOrderCount,
		CreatedAt:        agent.CreatedAt,
	}
	if agent.User != nil {
		dto.Name = agent.User.FullName()
		dto.Email = agent.User.Email
	}
	for _, area := range agent.Areas {
		dto.Areas = append(dto.Areas, AreaSummary{ID: area.ID, Name: area.Name, City: area.City})
	}
	return dto
}
