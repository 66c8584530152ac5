package fulfillment

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

func setupFulfillmentDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test keeps row counts isolated
	// while still sharing the schema across pooled connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  default_address TEXT,
  device_token TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS serviceable_areas (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  city TEXT NOT NULL,
  pincodes TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS delivery_agents (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending_approval',
  phone TEXT NOT NULL,
  vehicle_number TEXT,
  photo_path TEXT,
  max_deliveries INTEGER,
  active_order_count INTEGER NOT NULL DEFAULT 0,
  approved_at DATETIME,
  rejected_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS agent_areas (
  agent_id TEXT NOT NULL,
  area_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (agent_id, area_id)
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT 'each',
  image_path TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  plan TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_address TEXT NOT NULL,
  schedule TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  shipping_charge TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  assigned_agent_id TEXT,
  assigned_agent_name TEXT,
  assigned_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  plan TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schemas {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// gormTxRunner runs the callback inside a native gorm transaction; tests
// exercise the same commit/rollback semantics production gets from pkg/db.
type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "fulfillment-test", Output: io.Discard})
}

func seedAgent(t *testing.T, db *gorm.DB, areaID uuid.UUID, status enums.AgentStatus, load int, maxDeliveries *int) *models.DeliveryAgent {
	t.Helper()

	agent := &models.DeliveryAgent{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Status:           status,
		Phone:            "9" + uuid.NewString()[:9],
		MaxDeliveries:    maxDeliveries,
		ActiveOrderCount: load,
	}
	require.NoError(t, db.Create(agent).Error)
	if areaID != uuid.Nil {
		require.NoError(t, db.Create(&models.AgentArea{AgentID: agent.ID, AreaID: areaID}).Error)
	}
	return agent
}

func seedArea(t *testing.T, db *gorm.DB, name string, active bool) *models.ServiceableArea {
	t.Helper()

	area := &models.ServiceableArea{
		ID:       uuid.New(),
		Name:     name,
		City:     "Mumbai",
		IsActive: active,
	}
	require.NoError(t, db.Create(area).Error)
	return area
}

func seedOrder(t *testing.T, db *gorm.DB, agentID *uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  nextTestOrderNumber(),
		UserID:       uuid.New(),
		CustomerName: "Asha Rao",
		Status:       status,
		DeliveryAddress: types.DeliveryAddress{
			Street:  "12 Hill Road",
			AreaID:  uuid.New(),
			City:    "Mumbai",
			State:   "MH",
			Pincode: "400050",
		},
		Schedule: types.DeliverySchedule{},
		Subtotal: decimal.NewFromInt(500),
		Total:    decimal.NewFromInt(500),
	}
	if agentID != nil {
		order.AssignedAgentID = agentID
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

var testOrderNumber int64 = 2000

func nextTestOrderNumber() int64 {
	testOrderNumber++
	return testOrderNumber
}

func TestClaimAgentSlotGuardsCapacity(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agent := seedAgent(t, db, uuid.Nil, enums.AgentStatusApproved, 1, nil)

	claimed, err := repo.ClaimAgentSlot(ctx, agent.ID, 2)
	require.NoError(t, err)
	assert.True(t, claimed)

	// At capacity now; a second claim must lose.
	claimed, err = repo.ClaimAgentSlot(ctx, agent.ID, 2)
	require.NoError(t, err)
	assert.False(t, claimed)

	var reloaded models.DeliveryAgent
	require.NoError(t, db.First(&reloaded, "id = ?", agent.ID).Error)
	assert.Equal(t, 2, reloaded.ActiveOrderCount)
}

func TestClaimAgentSlotRejectsUnapproved(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)

	agent := seedAgent(t, db, uuid.Nil, enums.AgentStatusPendingApproval, 0, nil)

	claimed, err := repo.ClaimAgentSlot(context.Background(), agent.ID, 10)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestReleaseAgentSlotNeverGoesNegative(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agent := seedAgent(t, db, uuid.Nil, enums.AgentStatusApproved, 1, nil)

	require.NoError(t, repo.ReleaseAgentSlot(ctx, agent.ID))
	require.NoError(t, repo.ReleaseAgentSlot(ctx, agent.ID))

	var reloaded models.DeliveryAgent
	require.NoError(t, db.First(&reloaded, "id = ?", agent.ID).Error)
	assert.Equal(t, 0, reloaded.ActiveOrderCount)
}

func TestShippingChargeDefaultsToZero(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	charge, err := repo.ShippingCharge(ctx)
	require.NoError(t, err)
	assert.True(t, charge.IsZero())

	require.NoError(t, db.Exec(`INSERT INTO settings (key, value) VALUES ('shipping_charge', '50')`).Error)
	charge, err = repo.ShippingCharge(ctx)
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.NewFromInt(50)))

	require.NoError(t, db.Exec(`UPDATE settings SET value = '"not a number"' WHERE key = 'shipping_charge'`).Error)
	charge, err = repo.ShippingCharge(ctx)
	require.NoError(t, err)
	assert.True(t, charge.IsZero())
}

func TestFindUnassignedPendingIDs(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	unassigned := seedOrder(t, db, nil, enums.OrderStatusPending)
	agentID := uuid.New()
	seedOrder(t, db, &agentID, enums.OrderStatusPending)
	seedOrder(t, db, nil, enums.OrderStatusDelivered)

	ids, err := repo.FindUnassignedPendingIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, unassigned.ID, ids[0])
}

func TestCreateOrderAssignsDistinctNumbers(t *testing.T) {
	db := setupFulfillmentDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	build := func() *models.Order {
		return &models.Order{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			CustomerName: "Asha Rao",
			Status:       enums.OrderStatusPending,
			DeliveryAddress: types.DeliveryAddress{
				Street:  "12 Hill Road",
				AreaID:  uuid.New(),
				City:    "Mumbai",
				State:   "MH",
				Pincode: "400050",
			},
			Schedule: types.DeliverySchedule{},
			Subtotal: decimal.NewFromInt(500),
			Total:    decimal.NewFromInt(500),
		}
	}

	first := build()
	require.NoError(t, repo.CreateOrder(ctx, first))
	second := build()
	require.NoError(t, repo.CreateOrder(ctx, second))

	require.Greater(t, first.OrderNumber, int64(1000))
	require.Greater(t, second.OrderNumber, first.OrderNumber)

	// A caller-supplied number is kept as-is.
	preset := build()
	preset.OrderNumber = 9999
	require.NoError(t, repo.CreateOrder(ctx, preset))
	require.EqualValues(t, 9999, preset.OrderNumber)
}
