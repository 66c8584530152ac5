package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

func setupOrdersDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_address TEXT NOT NULL,
  schedule TEXT NOT NULL DEFAULT '[]',
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
	}
	for _, stmt := range schemas {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type stubAgentCounts struct {
	pending  int64
	approved int64
}

func (s stubAgentCounts) CountByStatus(_ context.Context, status enums.AgentStatus) (int64, error) {
	if status == enums.AgentStatusPendingApproval {
		return s.pending, nil
	}
	return s.approved, nil
}

var ordersTestClock = time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC)

func newOrdersTestService(t *testing.T, db *gorm.DB, counts stubAgentCounts) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), counts)
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return ordersTestClock }
	return svc
}

type orderSeed struct {
	userID    uuid.UUID
	agentID   *uuid.UUID
	status    enums.OrderStatus
	schedule  types.DeliverySchedule
	total     string
	createdAt time.Time
}

var orderSeedCounter int64 = 5000

func seedOrderRow(t *testing.T, db *gorm.DB, seed orderSeed) *models.Order {
	t.Helper()

	orderSeedCounter++
	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  orderSeedCounter,
		UserID:       seed.userID,
		CustomerName: "Asha Rao",
		Status:       seed.status,
		DeliveryAddress: types.DeliveryAddress{
			Street:  "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
		},
		Schedule:        seed.schedule,
		Subtotal:        decimal.RequireFromString(seed.total),
		Total:           decimal.RequireFromString(seed.total),
		AssignedAgentID: seed.agentID,
	}
	if !seed.createdAt.IsZero() {
		order.CreatedAt = seed.createdAt
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func pendingEntry(date types.CivilDate) types.DeliveryDate {
	return types.DeliveryDate{Date: date, Status: enums.DeliveryStatusPending}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})
	owner := uuid.New()
	order := seedOrderRow(t, db, orderSeed{userID: owner, status: enums.OrderStatusPending, total: "100"})

	detail, err := svc.GetForUser(context.Background(), owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, detail.OrderNumber)
	assert.Equal(t, "100.00", detail.Total)

	_, err = svc.GetForUser(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeliveryCalendarSortsAndSkipsPastEntries(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})
	user := uuid.New()

	today := types.CivilDateOf(ordersTestClock)
	first := seedOrderRow(t, db, orderSeed{
		userID: user,
		status: enums.OrderStatusPending,
		schedule: types.DeliverySchedule{
			// An already-delivered and a past pending entry stay off the calendar.
			{Date: today.AddDays(-1), Status: enums.DeliveryStatusDelivered},
			pendingEntry(today.AddDays(-2)),
			pendingEntry(today.AddDays(2)),
		},
		total: "100",
	})
	second := seedOrderRow(t, db, orderSeed{
		userID:   user,
		status:   enums.OrderStatusPending,
		schedule: types.DeliverySchedule{pendingEntry(today.AddDays(1))},
		total:    "100",
	})
	seedOrderRow(t, db, orderSeed{
		userID:   uuid.New(),
		status:   enums.OrderStatusPending,
		schedule: types.DeliverySchedule{pendingEntry(today.AddDays(1))},
		total:    "100",
	})

	entries, err := svc.DeliveryCalendar(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].OrderID)
	assert.Equal(t, first.ID, entries[1].OrderID)
	assert.True(t, entries[0].Date.Before(entries[1].Date))
}

func TestDailyRouteOnlyIncludesTodaysPendingStops(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})
	agentID := uuid.New()
	today := types.CivilDateOf(ordersTestClock)

	due := seedOrderRow(t, db, orderSeed{
		userID:   uuid.New(),
		agentID:  &agentID,
		status:   enums.OrderStatusPending,
		schedule: types.DeliverySchedule{pendingEntry(today), pendingEntry(today.AddDays(1))},
		total:    "100",
	})
	seedOrderRow(t, db, orderSeed{
		userID:   uuid.New(),
		agentID:  &agentID,
		status:   enums.OrderStatusPending,
		schedule: types.DeliverySchedule{pendingEntry(today.AddDays(3))},
		total:    "100",
	})

	stops, err := svc.DailyRoute(context.Background(), agentID)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, due.ID, stops[0].OrderID)
	assert.Equal(t, "Asha Rao", stops[0].CustomerName)
}

func TestAgentDashboardExcludesDeliveredOrders(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})
	agentID := uuid.New()

	open := seedOrderRow(t, db, orderSeed{userID: uuid.New(), agentID: &agentID, status: enums.OrderStatusOutForDelivery, total: "250"})
	seedOrderRow(t, db, orderSeed{userID: uuid.New(), agentID: &agentID, status: enums.OrderStatusDelivered, total: "300"})

	list, err := svc.AgentDashboard(context.Background(), agentID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
}

func TestAdminListPaginatesNewestFirst(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})

	oldest := seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusPending, total: "100", createdAt: ordersTestClock.Add(-3 * time.Hour)})
	middle := seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusPending, total: "200", createdAt: ordersTestClock.Add(-2 * time.Hour)})
	newest := seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusOutForDelivery, total: "300", createdAt: ordersTestClock.Add(-1 * time.Hour)})

	first, err := svc.AdminList(context.Background(), nil, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.Equal(t, newest.ID, first.Orders[0].ID)
	assert.Equal(t, middle.ID, first.Orders[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.AdminList(context.Background(), nil, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, oldest.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestAdminListFiltersByStatus(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})

	pending := seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusPending, total: "100"})
	seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusDelivered, total: "200"})

	status := enums.OrderStatusPending
	list, err := svc.AdminList(context.Background(), &status, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, pending.ID, list.Orders[0].ID)
}

func TestAdminListRejectsMalformedCursor(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{})

	_, err := svc.AdminList(context.Background(), nil, pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDashboardStatsAggregates(t *testing.T) {
	db := setupOrdersDB(t)
	svc := newOrdersTestService(t, db, stubAgentCounts{pending: 2, approved: 5})
	agentID := uuid.New()

	seedOrderRow(t, db, orderSeed{userID: uuid.New(), status: enums.OrderStatusPending, total: "100.50"})
	seedOrderRow(t, db, orderSeed{userID: uuid.New(), agentID: &agentID, status: enums.OrderStatusOutForDelivery, total: "200"})
	seedOrderRow(t, db, orderSeed{userID: uuid.New(), agentID: &agentID, status: enums.OrderStatusDelivered, total: "300"})

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "600.50", stats.TotalRevenue)
	assert.EqualValues(t, 2, stats.ActiveOrders)
	assert.EqualValues(t, 1, stats.DeliveredOrders)
	assert.EqualValues(t, 1, stats.UnassignedOrders)
	assert.EqualValues(t, 2, stats.PendingAgents)
	assert.EqualValues(t, 5, stats.ApprovedAgents)
}
