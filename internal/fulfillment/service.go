package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox/payloads"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service orchestrates order creation, agent assignment, the reconcile
// sweep, and delivery completion.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	ReconcileUnassigned(ctx context.Context) (int, error)
	CompleteDeliveries(ctx context.Context, input CompleteDeliveriesInput) (*CompleteDeliveriesResult, error)
	UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) error
}

type service struct {
	repo            Repository
	tx              txRunner
	outbox          outboxPublisher
	fulfillment     *metrics.FulfillmentMetrics
	logg            *logger.Logger
	defaultCapacity int
	now             nowFunc
}

// NewService builds the fulfillment service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	fulfillment *metrics.FulfillmentMetrics,
	logg *logger.Logger,
	defaultCapacity int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if defaultCapacity <= 0 {
		return nil, fmt.Errorf("default agent capacity must be positive")
	}
	return &service{
		repo:            repo,
		tx:              tx,
		outbox:          outboxSvc,
		fulfillment:     fulfillment,
		logg:            logg,
		defaultCapacity: defaultCapacity,
		now:             time.Now,
	}, nil
}

// CreateOrder snapshots the customer's cart into an order, tries to match
// an agent, and commits order, counter increment and cart deletion as one
// transaction. A missing area or a fully loaded agent pool never blocks
// the customer: the order commits unassigned and the sweep picks it up.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.DeliveryAddress.Street == "" || input.DeliveryAddress.Pincode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address incomplete")
	}

	items, err := s.repo.FindCartItems(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lineItems, subtotal, err := snapshotLineItems(items)
	if err != nil {
		return nil, err
	}

	shipping, err := s.repo.ShippingCharge(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping charge")
	}
	total := subtotal.Add(shipping)

	customerName, customerPhone := s.customerIdentity(ctx, input.UserID)

	order := &models.Order{
		UserID:          input.UserID,
		CustomerName:    customerName,
		CustomerPhone:   customerPhone,
		Status:          enums.OrderStatusPending,
		DeliveryAddress: input.DeliveryAddress,
		Schedule:        types.DeliverySchedule{},
		Subtotal:        subtotal,
		ShippingCharge:  shipping,
		Total:           total,
		Items:           lineItems,
	}
	plan := PlanForItems(items)

	var assigned *eligibleAgent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		match, err := s.assignWithinTx(ctx, repo, input.DeliveryAddress.AreaID)
		if err != nil {
			return err
		}
		if match != nil {
			now := s.now()
			agentName := agentDisplayName(match.agent)
			order.AssignedAgentID = &match.agent.ID
			order.AssignedAgentName = &agentName
			order.AssignedAt = &now
			order.Schedule = ComputeSchedule(plan, types.CivilDateOf(now))
		}
		assigned = match

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.DeleteCartItems(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		created := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.RoleCustomer.String()},
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      order.UserID,
				AreaID:      input.DeliveryAddress.AreaID,
				Total:       total.StringFixed(2),
				Assigned:    match != nil,
			},
		}
		if err := s.outbox.Emit(ctx, tx, created); err != nil {
			return err
		}
		if match != nil {
			return s.emitAssigned(ctx, tx, order, match.agent.ID, assignmentSourceCheckout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fulfillment.IncOrdersCreated()
	if assigned != nil {
		s.fulfillment.IncOrdersAssigned(assignmentSourceCheckout)
	} else {
		s.fulfillment.IncOrdersUnassigned()
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "order created unassigned")
	}

	return &CreateOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       total.StringFixed(2),
		Assigned:    assigned != nil,
	}, nil
}

// assignWithinTx finds the least-loaded eligible agent and claims a slot.
// A concurrent checkout can beat us to the claim; when that happens the
// next candidate is tried until the pool is exhausted.
func (s *service) assignWithinTx(ctx context.Context, repo Repository, areaID uuid.UUID) (*eligibleAgent, error) {
	matcher, err := NewMatcher(repo, s.defaultCapacity)
	if err != nil {
		return nil, err
	}
	for {
		match, err := matcher.FindAgent(ctx, areaID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match agent")
		}
		if match == nil {
			return nil, nil
		}
		claimed, err := repo.ClaimAgentSlot(ctx, match.agent.ID, match.capacity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim agent slot")
		}
		if claimed {
			return match, nil
		}
	}
}

// ReconcileUnassigned retries assignment for every pending order without an
// agent. Each order runs in its own transaction so one failure cannot sink
// the sweep; the count of newly assigned orders is returned.
func (s *service) ReconcileUnassigned(ctx context.Context) (int, error) {
	ids, err := s.repo.FindUnassignedPendingIDs(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unassigned orders")
	}

	assignedCount := 0
	var errs []error
	for _, id := range ids {
		assigned, err := s.reconcileOne(ctx, id)
		if err != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, id.String()), "reconcile order failed", err)
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if assigned {
			assignedCount++
			s.fulfillment.IncOrdersAssigned(assignmentSourceReconcile)
		}
	}
	return assignedCount, multierr.Combine(errs...)
}

func (s *service) reconcileOne(ctx context.Context, orderID uuid.UUID) (bool, error) {
	assigned := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		// Another sweep or a racing checkout may have assigned it since
		// the id list was read.
		if order.IsAssigned() || order.Status != enums.OrderStatusPending {
			return nil
		}

		match, err := s.assignWithinTx(ctx, repo, order.DeliveryAddress.AreaID)
		if err != nil {
			return err
		}
		if match == nil {
			return nil
		}

		now := s.now()
		plan := planFromLineItems(order.Items)
		schedule := ComputeSchedule(plan, types.CivilDateOf(now))
		agentName := agentDisplayName(match.agent)
		updates := map[string]any{
			"assigned_agent_id":   match.agent.ID,
			"assigned_agent_name": agentName,
			"assigned_at":         now,
			"schedule":            schedule,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
		}

		order.AssignedAgentID = &match.agent.ID
		assigned = true
		return s.emitAssigned(ctx, tx, order, match.agent.ID, assignmentSourceReconcile)
	})
	return assigned, err
}

// CompleteDeliveries flips today's pending schedule entries to delivered
// for each order in the batch. An order whose schedule finishes transitions
// to delivered and releases its agent slot exactly once. Orders that are
// missing or not owned by the agent are skipped, not fatal.
func (s *service) CompleteDeliveries(ctx context.Context, input CompleteDeliveriesInput) (*CompleteDeliveriesResult, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no orders to complete")
	}

	result := &CompleteDeliveriesResult{}
	today := types.CivilDateOf(s.now())

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, orderID := range input.OrderIDs {
			order, err := repo.FindOrderByID(ctx, orderID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					result.SkippedOrderIDs = append(result.SkippedOrderIDs, orderID)
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if order.AssignedAgentID == nil || *order.AssignedAgentID != input.AgentID {
				result.SkippedOrderIDs = append(result.SkippedOrderIDs, orderID)
				continue
			}

			flipped, err := s.completeOrderToday(ctx, tx, repo, order, today)
			if err != nil {
				return err
			}
			result.EntriesDelivered += flipped
			if flipped > 0 && order.Status == enums.OrderStatusDelivered {
				result.OrdersCompleted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fulfillment.AddDeliveriesCompleted(result.EntriesDelivered)
	return result, nil
}

// completeOrderToday flips today's pending entries on one order and, when
// the schedule finishes, moves the order to delivered and releases the
// agent slot. The previous-status guard keeps the decrement to exactly one
// per order no matter how often completion is retried.
func (s *service) completeOrderToday(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, today types.CivilDate) (int, error) {
	pending := order.Schedule.PendingOn(today)
	if len(pending) == 0 {
		return 0, nil
	}
	for _, idx := range pending {
		order.Schedule[idx].Status = enums.DeliveryStatusDelivered
	}

	updates := map[string]any{"schedule": order.Schedule}
	finished := order.Schedule.AllDelivered() && order.Status != enums.OrderStatusDelivered
	if finished {
		now := s.now()
		updates["status"] = enums.OrderStatusDelivered
		updates["delivered_at"] = now
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update schedule")
	}

	if finished {
		order.Status = enums.OrderStatusDelivered
		if err := repo.ReleaseAgentSlot(ctx, *order.AssignedAgentID); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release agent slot")
		}
		if err := s.emitDelivered(ctx, tx, order); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}

// UpdateOrderStatus is the agent dashboard single-order action. Moves are
// checked against the status transition table; entering delivered marks
// the remaining schedule entries done and releases the agent slot.
func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) error {
	if input.AgentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.AssignedAgentID == nil || *order.AssignedAgentID != input.AgentID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order not assigned to agent")
		}
		if order.Status == input.Status {
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		updates := map[string]any{"status": input.Status}
		if input.Status == enums.OrderStatusDelivered {
			for i := range order.Schedule {
				order.Schedule[i].Status = enums.DeliveryStatusDelivered
			}
			updates["schedule"] = order.Schedule
			updates["delivered_at"] = s.now()
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if input.Status == enums.OrderStatusDelivered {
			order.Status = enums.OrderStatusDelivered
			if err := repo.ReleaseAgentSlot(ctx, input.AgentID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release agent slot")
			}
			return s.emitDelivered(ctx, tx, order)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderOutForDelivery,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         agentActor(input.AgentID),
			Data: payloads.OrderOutForDeliveryEvent{
				OrderID:  order.ID,
				AgentID:  input.AgentID,
				AreaID:   order.DeliveryAddress.AreaID,
				MarkedAt: s.now(),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) customerIdentity(ctx context.Context, userID uuid.UUID) (string, *string) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		// A deleted profile must not block checkout.
		return placeholderCustomerName, nil
	}
	name := user.FullName()
	if name == "" {
		name = placeholderCustomerName
	}
	return name, user.Phone
}

func (s *service) emitAssigned(ctx context.Context, tx *gorm.DB, order *models.Order, agentID uuid.UUID, source string) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.OrderAssignedEvent{
			OrderID:    order.ID,
			AgentID:    agentID,
			AreaID:     order.DeliveryAddress.AreaID,
			Source:     source,
			AssignedAt: s.now(),
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) emitDelivered(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderDelivered,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         agentActor(*order.AssignedAgentID),
		Data: payloads.OrderDeliveredEvent{
			OrderID:     order.ID,
			AgentID:     *order.AssignedAgentID,
			DeliveredAt: s.now(),
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

// snapshotLineItems freezes cart rows into order line items priced at the
// current catalog price, returning the items and their subtotal.
func snapshotLineItems(items []models.CartItem) ([]models.OrderLineItem, decimal.Decimal, error) {
	lineItems := make([]models.OrderLineItem, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "cart references a removed product")
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be positive")
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Plan:        item.Plan,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return lineItems, subtotal, nil
}

// planFromLineItems mirrors PlanForItems for persisted orders, used by the
// reconcile sweep where the cart is long gone.
func planFromLineItems(items []models.OrderLineItem) enums.SubscriptionPlan {
	for _, item := range items {
		if item.Plan == enums.SubscriptionPlanMonthly {
			return enums.SubscriptionPlanMonthly
		}
	}
	return enums.SubscriptionPlanWeekly
}

func agentDisplayName(agent models.DeliveryAgent) string {
	if agent.User != nil {
		if name := agent.User.FullName(); name != "" {
			return name
		}
	}
	return agent.Phone
}

func agentActor(agentID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: agentID, Role: enums.RoleAgent.String()}
}
