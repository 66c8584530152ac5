package areas

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
)

// Repository exposes serviceable-area persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an areas repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a delivery zone.
func (r *Repository) Create(ctx context.Context, area *models.ServiceableArea) (*models.ServiceableArea, error) {
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(area).Error; err != nil {
		return nil, err
	}
	return area, nil
}

// FindByID loads an area with its assigned agents.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error) {
	var area models.ServiceableArea
	err := r.db.WithContext(ctx).
		Preload("Agents.User").
		First(&area, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// List returns areas alphabetically; inactive zones are included only when
// asked, so the storefront dropdown stays clean.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]models.ServiceableArea, error) {
	query := r.db.WithContext(ctx).Model(&models.ServiceableArea{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var areas []models.ServiceableArea
	if err := query.Order("name ASC").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// Update applies the provided column updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ServiceableArea{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AssignAgent links an agent to the area; duplicate links are ignored.
func (r *Repository) AssignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO agent_areas (agent_id, area_id, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (agent_id, area_id) DO NOTHING
	`, agentID, areaID).Error
}

// UnassignAgent removes the link between an agent and the area.
func (r *Repository) UnassignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("area_id = ? AND agent_id = ?", areaID, agentID).
		Delete(&models.AgentArea{}).Error
}

// Deactivate retires the zone: existing orders keep their snapshot, new
// checkouts in this area go unassigned until it is reactivated.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceableArea{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}
