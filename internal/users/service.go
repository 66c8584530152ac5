package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

// Service covers the customer-facing profile surface.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error)
	RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error) {
	if dto.DefaultAddress != nil {
		if err := dto.DefaultAddress.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery address")
		}
	}
	if err := s.repo.UpdateProfile(ctx, userID, dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Profile(ctx, userID)
}

// RegisterDeviceToken upserts the caller's push token; an empty token
// clears it.
func (s *service) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	trimmed := strings.TrimSpace(token)
	var value *string
	if trimmed != "" {
		value = &trimmed
	}
	if err := s.repo.RegisterDeviceToken(ctx, userID, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register device token")
	}
	return nil
}
