package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox/idempotency"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox/payloads"
)

const inboxConsumer = "inbox-notifications"

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type subscriber interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

type dedupeGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns notification-topic events into inbox rows for users.
type Consumer struct {
	repo         notificationCreator
	subscription subscriber
	dedupe       dedupeGuard
	logg         *logger.Logger
}

// NewConsumer builds the inbox notification consumer.
func NewConsumer(repo notificationCreator, subscription subscriber, guard *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		dedupe:       guard,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		if c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process reports whether the message should be acked. Malformed
// messages are acked so they do not loop through redelivery forever.
func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	builder, ok := inboxBuilders[enums.OutboxEventType(eventType)]
	if !ok {
		c.logg.Info(logCtx, "skipping event with no inbox rendering")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := c.dedupe.CheckAndMarkProcessed(ctx, inboxConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	notification, err := builder(envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.dedupe.Delete(ctx, inboxConsumer, eventID)
		return true
	}

	logCtx = c.logg.WithField(logCtx, "user_id", notification.UserID.String())
	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.dedupe.Delete(ctx, inboxConsumer, eventID)
		return false
	}
	c.logg.Info(logCtx, "inbox notification stored")
	return true
}

type inboxBuilder func(data json.RawMessage) (*models.Notification, error)

var inboxBuilders = map[enums.OutboxEventType]inboxBuilder{
	enums.EventNotificationRequested: buildRequestedNotification,
	enums.EventAgentApproved:         buildAgentDecisionNotification,
	enums.EventAgentRejected:         buildAgentDecisionNotification,
}

func buildRequestedNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id missing")
	}
	if !payload.Type.IsValid() {
		return nil, fmt.Errorf("unknown notification type %q", payload.Type)
	}
	return &models.Notification{
		UserID: payload.UserID,
		Type:   payload.Type,
		Title:  payload.Title,
		Body:   payload.Body,
	}, nil
}

func buildAgentDecisionNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.AgentDecisionEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id missing")
	}

	title := "Application update"
	body := "Your delivery agent application was not approved this time."
	if payload.Status == enums.AgentStatusApproved {
		title = "Welcome aboard"
		body = "Your delivery agent application has been approved. You can start accepting orders."
	}
	return &models.Notification{
		UserID: payload.UserID,
		Type:   enums.NotificationTypeAgentOnboarding,
		Title:  title,
		Body:   body,
	}, nil
}
