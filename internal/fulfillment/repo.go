package fulfillment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// SettingShippingCharge is the settings key holding the flat shipping fee.
const SettingShippingCharge = "shipping_charge"

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAreaByID(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error) {
	var area models.ServiceableArea
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// FindEligibleAgents returns the approved agents covering the area ordered
// by current load, least-loaded first. Capacity is not filtered here:
// max_deliveries is nullable and the fallback is config-owned, so the
// matcher applies it.
func (r *repository) FindEligibleAgents(ctx context.Context, areaID uuid.UUID) ([]models.DeliveryAgent, error) {
	var agents []models.DeliveryAgent
	err := r.db.WithContext(ctx).
		Joins("JOIN agent_areas ON agent_areas.agent_id = delivery_agents.id").
		Where("agent_areas.area_id = ?", areaID).
		Where("delivery_agents.status = ?", enums.AgentStatusApproved).
		Order("delivery_agents.active_order_count ASC, delivery_agents.created_at ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// ClaimAgentSlot atomically takes one unit of the agent's capacity. The
// guard in the WHERE clause is what makes two concurrent checkouts safe:
// the losing transaction sees zero rows affected and moves on.
func (r *repository) ClaimAgentSlot(ctx context.Context, agentID uuid.UUID, capacity int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE delivery_agents
		SET active_order_count = active_order_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ? AND active_order_count < ?
	`, agentID, enums.AgentStatusApproved, capacity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseAgentSlot returns one unit of capacity, never dropping below zero.
func (r *repository) ReleaseAgentSlot(ctx context.Context, agentID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE delivery_agents
		SET active_order_count = active_order_count - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND active_order_count > 0
	`, agentID).Error
}

func (r *repository) FindCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) DeleteCartItems(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ShippingCharge reads the flat shipping fee from settings. A missing or
// malformed value means free shipping rather than a failed checkout.
func (r *repository) ShippingCharge(ctx context.Context) (decimal.Decimal, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("key = ?", SettingShippingCharge).
		First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	raw := strings.Trim(string(setting.Value), `"`)
	charge, err := decimal.NewFromString(raw)
	if err != nil || charge.IsNegative() {
		return decimal.Zero, nil
	}
	return charge, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
	}
	if order.OrderNumber == 0 {
		next, err := r.nextOrderNumber(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = next
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// nextOrderNumber draws from the database sequence so concurrent
// checkouts never collide on the unique index. The sqlite dialect has no
// sequences, so it falls back to MAX+1.
func (r *repository) nextOrderNumber(ctx context.Context) (int64, error) {
	var next int64
	if r.db.Dialector.Name() == "postgres" {
		err := r.db.WithContext(ctx).
			Raw("SELECT nextval('order_number_seq')").
			Scan(&next).Error
		return next, err
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(order_number), 1000) + 1 FROM orders").
		Scan(&next).Error
	return next, err
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindUnassignedPendingIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("assigned_agent_id IS NULL").
		Where("status = ?", enums.OrderStatusPending).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
