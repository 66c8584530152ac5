package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// UserDTO is the wire shape for user records, with the password hash
// stripped.
type UserDTO struct {
	ID             uuid.UUID              `json:"id"`
	Email          string                 `json:"email"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	Phone          *string                `json:"phone,omitempty"`
	Role           enums.Role             `json:"role"`
	DefaultAddress *types.DeliveryAddress `json:"default_address,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// FromModel maps a user model into its wire DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Phone:          user.Phone,
		Role:           user.Role,
		DefaultAddress: user.DefaultAddress,
		CreatedAt:      user.CreatedAt,
	}
}
