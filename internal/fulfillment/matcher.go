package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
)

// Matcher selects the delivery agent for an order's area. Selection is
// greedy least-loaded: among approved agents covering the area with spare
// capacity, the one with the fewest active orders wins, first-seen on ties.
type Matcher struct {
	repo            Repository
	defaultCapacity int
}

// NewMatcher builds an agent matcher. defaultCapacity applies to agents
// whose max_deliveries was never set.
func NewMatcher(repo Repository, defaultCapacity int) (*Matcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if defaultCapacity <= 0 {
		return nil, fmt.Errorf("default agent capacity must be positive")
	}
	return &Matcher{repo: repo, defaultCapacity: defaultCapacity}, nil
}

// FindAgent resolves the best eligible agent for the area, or nil when the
// area is unknown, inactive, or every covering agent is unapproved or at
// capacity. A nil result is not an error: the order proceeds unassigned and
// the reconcile sweep retries later. Read-only; callers claim the slot
// separately.
func (m *Matcher) FindAgent(ctx context.Context, areaID uuid.UUID) (*eligibleAgent, error) {
	if areaID == uuid.Nil {
		return nil, nil
	}

	area, err := m.repo.FindAreaByID(ctx, areaID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !area.IsActive {
		return nil, nil
	}

	agents, err := m.repo.FindEligibleAgents(ctx, area.ID)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by active_order_count, so the first one under
	// its cap is the least-loaded eligible agent.
	for i := range agents {
		capacity := agents[i].Capacity(m.defaultCapacity)
		if agents[i].ActiveOrderCount < capacity {
			return &eligibleAgent{agent: agents[i], capacity: capacity}, nil
		}
	}
	return nil, nil
}

// eligibleAgent pairs a matched agent with its resolved capacity so the
// claim step uses the same cap the filter did.
type eligibleAgent struct {
	agent    models.DeliveryAgent
	capacity int
}
