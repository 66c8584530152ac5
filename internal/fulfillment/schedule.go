package fulfillment

import (
	"time"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// ComputeSchedule builds the delivery calendar for a plan: it walks forward
// from the day after start, keeps weekdays only, and stops once the plan's
// delivery count is reached. Pure and deterministic; dates are UTC civil
// dates so local midnight rounding can never shift an entry.
func ComputeSchedule(plan enums.SubscriptionPlan, start types.CivilDate) types.DeliverySchedule {
	count := plan.DeliveryCount()
	schedule := make(types.DeliverySchedule, 0, count)
	day := start
	for len(schedule) < count {
		day = day.AddDays(1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		schedule = append(schedule, types.DeliveryDate{
			Date:   day,
			Status: enums.DeliveryStatusPending,
		})
	}
	return schedule
}

// PlanForItems resolves the schedule cadence for an order: if any line item
// is on the monthly plan the longer monthly calendar governs, otherwise
// weekly.
func PlanForItems(items []models.CartItem) enums.SubscriptionPlan {
	for _, item := range items {
		if item.Plan == enums.SubscriptionPlanMonthly {
			return enums.SubscriptionPlanMonthly
		}
	}
	return enums.SubscriptionPlanWeekly
}
