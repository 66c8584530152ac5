package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox/payloads"
)

type fakeCreator struct {
	mu      sync.Mutex
	created []*models.Notification
	err     error
}

func (f *fakeCreator) Create(_ context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type fakeDedupe struct {
	mu       sync.Mutex
	seen     map[uuid.UUID]bool
	checkErr error
}

func (f *fakeDedupe) CheckAndMarkProcessed(_ context.Context, _ string, eventID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return false, f.checkErr
	}
	if f.seen == nil {
		f.seen = map[uuid.UUID]bool{}
	}
	if f.seen[eventID] {
		return true, nil
	}
	f.seen[eventID] = true
	return false, nil
}

func (f *fakeDedupe) Delete(_ context.Context, _ string, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, eventID)
	return nil
}

func newTestConsumer(repo *fakeCreator, dedupe *fakeDedupe) *Consumer {
	return &Consumer{
		repo:   repo,
		dedupe: dedupe,
		logg:   logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard}),
	}
}

func envelopeBytes(t *testing.T, payload any) []byte {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return raw
}

func TestConsumerStoresRequestedNotification(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{})
	userID := uuid.New()

	msg := envelopeBytes(t, payloads.NotificationRequestedEvent{
		UserID: userID,
		Type:   enums.NotificationTypeOrderAlert,
		Title:  "Order confirmed",
		Body:   "Your order #5001 is confirmed.",
	})

	ack := consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1", msg)
	assert.True(t, ack)
	require.Len(t, repo.created, 1)
	assert.Equal(t, userID, repo.created[0].UserID)
	assert.Equal(t, enums.NotificationTypeOrderAlert, repo.created[0].Type)
	assert.Equal(t, "Order confirmed", repo.created[0].Title)
}

func TestConsumerRendersAgentDecision(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{})
	userID := uuid.New()

	approved := envelopeBytes(t, payloads.AgentDecisionEvent{
		AgentID: uuid.New(),
		UserID:  userID,
		Status:  enums.AgentStatusApproved,
	})
	rejected := envelopeBytes(t, payloads.AgentDecisionEvent{
		AgentID: uuid.New(),
		UserID:  userID,
		Status:  enums.AgentStatusRejected,
	})

	assert.True(t, consumer.process(context.Background(), string(enums.EventAgentApproved), "m1", approved))
	assert.True(t, consumer.process(context.Background(), string(enums.EventAgentRejected), "m2", rejected))

	require.Len(t, repo.created, 2)
	assert.Equal(t, enums.NotificationTypeAgentOnboarding, repo.created[0].Type)
	assert.Equal(t, "Welcome aboard", repo.created[0].Title)
	assert.Equal(t, "Application update", repo.created[1].Title)
}

func TestConsumerSkipsUnhandledEventTypes(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{})

	msg := envelopeBytes(t, payloads.OrderCreatedEvent{OrderID: uuid.New()})
	ack := consumer.process(context.Background(), string(enums.EventOrderCreated), "m1", msg)

	assert.True(t, ack)
	assert.Empty(t, repo.created)
}

func TestConsumerDeduplicatesByEventID(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{})

	msg := envelopeBytes(t, payloads.NotificationRequestedEvent{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeDeliveryUpdate,
		Title:  "Out for delivery",
		Body:   "Your groceries are on the way.",
	})

	assert.True(t, consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1", msg))
	assert.True(t, consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1-redelivery", msg))
	assert.Len(t, repo.created, 1)
}

func TestConsumerNacksWhenDedupeStoreDown(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{checkErr: errors.New("redis down")})

	msg := envelopeBytes(t, payloads.NotificationRequestedEvent{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeOrderAlert,
		Title:  "t",
		Body:   "b",
	})

	ack := consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1", msg)
	assert.False(t, ack)
	assert.Empty(t, repo.created)
}

func TestConsumerNacksAndUnmarksOnStoreFailure(t *testing.T) {
	repo := &fakeCreator{err: errors.New("db down")}
	dedupe := &fakeDedupe{}
	consumer := newTestConsumer(repo, dedupe)

	msg := envelopeBytes(t, payloads.NotificationRequestedEvent{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeOrderAlert,
		Title:  "t",
		Body:   "b",
	})

	ack := consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1", msg)
	assert.False(t, ack)

	// The dedupe mark is rolled back, so redelivery retries the insert.
	repo.err = nil
	assert.True(t, consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1-redelivery", msg))
	assert.Len(t, repo.created, 1)
}

func TestConsumerAcksMalformedPayloads(t *testing.T) {
	repo := &fakeCreator{}
	consumer := newTestConsumer(repo, &fakeDedupe{})

	assert.True(t, consumer.process(context.Background(), string(enums.EventNotificationRequested), "m1", []byte("{not json")))

	missingUser := envelopeBytes(t, payloads.NotificationRequestedEvent{
		Type:  enums.NotificationTypeOrderAlert,
		Title: "t",
		Body:  "b",
	})
	assert.True(t, consumer.process(context.Background(), string(enums.EventNotificationRequested), "m2", missingUser))
	assert.Empty(t, repo.created)
}

func TestNewConsumerValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})

	_, err := NewConsumer(nil, nil, nil, logg)
	assert.Error(t, err)
}
