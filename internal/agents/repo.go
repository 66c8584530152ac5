package agents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// Repository exposes delivery-agent persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an agents repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repo to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts an agent row.
func (r *Repository) Create(ctx context.Context, agent *models.DeliveryAgent) (*models.DeliveryAgent, error) {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// FindByID loads an agent with user and area associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	var agent models.DeliveryAgent
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Areas").
		First(&agent, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindByUserID loads the agent row owned by a user account.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.DeliveryAgent, error) {
	var agent models.DeliveryAgent
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Areas").
		First(&agent, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns agents, optionally narrowed to one status, newest first.
func (r *Repository) List(ctx context.Context, status *enums.AgentStatus) ([]models.DeliveryAgent, error) {
	query := r.db.WithContext(ctx).Preload("User").Preload("Areas")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var agents []models.DeliveryAgent
	if err := query.Order("created_at DESC").Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// Update applies the provided column updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.DeliveryAgent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountByStatus tallies agents per status for the admin dashboard.
func (r *Repository) CountByStatus(ctx context.Context, status enums.AgentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryAgent{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
