package areas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

// CreateAreaInput is the admin payload for a new delivery zone.
type CreateAreaInput struct {
	Name     string   `json:"name" validate:"required"`
	City     string   `json:"city" validate:"required"`
	Pincodes []string `json:"pincodes,omitempty" validate:"omitempty,dive,len=6"`
}

// UpdateAreaInput carries partial zone edits.
type UpdateAreaInput struct {
	Name     *string   `json:"name,omitempty"`
	City     *string   `json:"city,omitempty"`
	Pincodes *[]string `json:"pincodes,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

type agentLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error)
}

// Service exposes area management for the admin surface and the area list
// for checkout.
type Service interface {
	Create(ctx context.Context, input CreateAreaInput) (*models.ServiceableArea, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error)
	List(ctx context.Context, includeInactive bool) ([]models.ServiceableArea, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAreaInput) (*models.ServiceableArea, error)
	AssignAgent(ctx context.Context, areaID, agentID uuid.UUID) error
	UnassignAgent(ctx context.Context, areaID, agentID uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   *Repository
	agents agentLoader
}

// NewService builds the areas service.
func NewService(repo *Repository, agents agentLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("areas repository required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agent loader required")
	}
	return &service{repo: repo, agents: agents}, nil
}

func (s *service) Create(ctx context.Context, input CreateAreaInput) (*models.ServiceableArea, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area name required")
	}

	area, err := s.repo.Create(ctx, &models.ServiceableArea{
		Name:     name,
		City:     strings.TrimSpace(input.City),
		Pincodes: input.Pincodes,
		IsActive: true,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "area name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create area")
	}
	return area, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error) {
	area, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "area not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load area")
	}
	return area, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.ServiceableArea, error) {
	areas, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list areas")
	}
	return areas, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAreaInput) (*models.ServiceableArea, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "area name required")
		}
		updates["name"] = name
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Pincodes != nil {
		updates["pincodes"] = *input.Pincodes
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "area name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update area")
	}
	return s.Get(ctx, id)
}

// AssignAgent links an approved agent to the zone. Orders already placed in
// the zone pick the new agent up on the next reconcile sweep.
func (s *service) AssignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	if _, err := s.Get(ctx, areaID); err != nil {
		return err
	}
	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	if agent.Status != enums.AgentStatusApproved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "agent is not approved")
	}

	if err := s.repo.AssignAgent(ctx, areaID, agentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign agent")
	}
	return nil
}

func (s *service) UnassignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	if err := s.repo.UnassignAgent(ctx, areaID, agentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign agent")
	}
	return nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate area")
	}
	return nil
}
