package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
	NotificationTypeOrderAlert         NotificationType = "order_alert"
	NotificationTypeDeliveryUpdate     NotificationType = "delivery_update"
	NotificationTypeAgentOnboarding    NotificationType = "agent_onboarding"
)

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeSystemAnnouncement,
		NotificationTypeOrderAlert,
		NotificationTypeDeliveryUpdate,
		NotificationTypeAgentOnboarding:
		return true
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	parsed := NotificationType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return parsed, nil
}
