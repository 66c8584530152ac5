package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

type agentCounter interface {
	CountByStatus(ctx context.Context, status enums.AgentStatus) (int64, error)
}

// Service is the read side of orders: customer history, agent workload,
// and the admin dashboard. Writes go through the fulfillment service.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderSummaryDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetailDTO, error)
	DeliveryCalendar(ctx context.Context, userID uuid.UUID) ([]CalendarEntryDTO, error)
	AgentDashboard(ctx context.Context, agentID uuid.UUID) ([]OrderSummaryDTO, error)
	DailyRoute(ctx context.Context, agentID uuid.UUID) ([]RouteStopDTO, error)
	AdminList(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderListDTO, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDetailDTO, error)
	DashboardStats(ctx context.Context) (*DashboardStatsDTO, error)
}

type service struct {
	repo   *Repository
	agents agentCounter
	now    func() time.Time
}

func NewService(repo *Repository, agents agentCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agent counter required")
	}
	return &service{repo: repo, agents: agents, now: time.Now}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderSummaryDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderSummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, summaryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		// Do not leak existence of other customers' orders.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return detailFromModel(order), nil
}

// DeliveryCalendar flattens the pending schedule entries of the
// customer's active orders into one date-sorted list.
func (s *service) DeliveryCalendar(ctx context.Context, userID uuid.UUID) ([]CalendarEntryDTO, error) {
	rows, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active orders")
	}

	today := types.CivilDateOf(s.now())
	var entries []CalendarEntryDTO
	for i := range rows {
		for _, entry := range rows[i].Schedule {
			if entry.Status != enums.DeliveryStatusPending {
				continue
			}
			if entry.Date.Before(today) {
				continue
			}
			entries = append(entries, CalendarEntryDTO{
				Date:        entry.Date,
				OrderID:     rows[i].ID,
				OrderNumber: rows[i].OrderNumber,
				Status:      entry.Status,
			})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Date.Equal(entries[b].Date) {
			return entries[a].OrderNumber < entries[b].OrderNumber
		}
		return entries[a].Date.Before(entries[b].Date)
	})
	return entries, nil
}

func (s *service) AgentDashboard(ctx context.Context, agentID uuid.UUID) ([]OrderSummaryDTO, error) {
	rows, err := s.repo.ListActiveByAgent(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent orders")
	}
	out := make([]OrderSummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, summaryFromModel(&rows[i]))
	}
	return out, nil
}

// DailyRoute returns the agent's stops with a delivery still pending today.
func (s *service) DailyRoute(ctx context.Context, agentID uuid.UUID) ([]RouteStopDTO, error) {
	rows, err := s.repo.ListActiveByAgent(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent orders")
	}

	today := types.CivilDateOf(s.now())
	var stops []RouteStopDTO
	for i := range rows {
		if len(rows[i].Schedule.PendingOn(today)) == 0 {
			continue
		}
		stops = append(stops, RouteStopDTO{
			OrderID:         rows[i].ID,
			OrderNumber:     rows[i].OrderNumber,
			CustomerName:    rows[i].CustomerName,
			CustomerPhone:   rows[i].CustomerPhone,
			DeliveryAddress: rows[i].DeliveryAddress,
			Status:          rows[i].Status,
		})
	}
	return stops, nil
}

func (s *service) AdminList(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, nextCursor, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderSummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, summaryFromModel(&rows[i]))
	}
	return &OrderListDTO{Orders: out, NextCursor: nextCursor}, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return detailFromModel(order), nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStatsDTO, error) {
	revenue, err := s.repo.TotalRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	pending, err := s.repo.CountByStatus(ctx, enums.OrderStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending orders")
	}
	outForDelivery, err := s.repo.CountByStatus(ctx, enums.OrderStatusOutForDelivery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count out-for-delivery orders")
	}
	delivered, err := s.repo.CountByStatus(ctx, enums.OrderStatusDelivered)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count delivered orders")
	}
	unassigned, err := s.repo.CountUnassigned(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unassigned orders")
	}
	pendingAgents, err := s.agents.CountByStatus(ctx, enums.AgentStatusPendingApproval)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending agents")
	}
	approvedAgents, err := s.agents.CountByStatus(ctx, enums.AgentStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved agents")
	}

	return &DashboardStatsDTO{
		TotalRevenue:     revenue.StringFixed(2),
		ActiveOrders:     pending + outForDelivery,
		DeliveredOrders:  delivered,
		UnassignedOrders: unassigned,
		PendingAgents:    pendingAgents,
		ApprovedAgents:   approvedAgents,
	}, nil
}
