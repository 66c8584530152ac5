package enums

import "fmt"

// SubscriptionPlan identifies the cadence a product is subscribed under.
type SubscriptionPlan string

const (
	SubscriptionPlanWeekly  SubscriptionPlan = "weekly"
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
)

var validSubscriptionPlans = []SubscriptionPlan{
	SubscriptionPlanWeekly,
	SubscriptionPlanMonthly,
}

// DeliveryCount returns how many delivery entries the plan generates.
func (s SubscriptionPlan) DeliveryCount() int {
	switch s {
	case SubscriptionPlanWeekly:
		return 5
	case SubscriptionPlanMonthly:
		return 22
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (s SubscriptionPlan) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubscriptionPlan.
func (s SubscriptionPlan) IsValid() bool {
	for _, candidate := range validSubscriptionPlans {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriptionPlan converts raw input into a SubscriptionPlan.
func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	for _, candidate := range validSubscriptionPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription plan %q", value)
}
