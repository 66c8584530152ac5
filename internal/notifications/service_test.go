package notifications

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

func setupNotificationsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`).Error)
	return db
}

func newInboxService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupNotificationsDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func TestInboxListsNewestFirstWithUnreadCount(t *testing.T) {
	svc, _ := newInboxService(t)
	user := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, user, enums.NotificationTypeOrderAlert, "Order placed", "Order #1001 confirmed"))
	require.NoError(t, svc.Record(ctx, user, enums.NotificationTypeDeliveryUpdate, "Out for delivery", "Order #1001 is on the way"))
	require.NoError(t, svc.Record(ctx, uuid.New(), enums.NotificationTypeOrderAlert, "Other user", "not yours"))

	inbox, err := svc.Inbox(ctx, user)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 2)
	assert.EqualValues(t, 2, inbox.UnreadCount)
	for _, n := range inbox.Notifications {
		assert.Nil(t, n.ReadAt)
	}
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	svc, _ := newInboxService(t)
	user := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, user, enums.NotificationTypeOrderAlert, "Order placed", "body"))
	inbox, err := svc.Inbox(ctx, user)
	require.NoError(t, err)
	id := inbox.Notifications[0].ID

	err = svc.MarkRead(ctx, uuid.New(), id)
	require.Error(t, err)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, svc.MarkRead(ctx, user, id))

	inbox, err = svc.Inbox(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 0, inbox.UnreadCount)
	require.NotNil(t, inbox.Notifications[0].ReadAt)

	// Re-reading an already-read notification is not found.
	err = svc.MarkRead(ctx, user, id)
	require.Error(t, err)
}

func TestMarkAllReadReportsTouchedRows(t *testing.T) {
	svc, _ := newInboxService(t)
	user := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, user, enums.NotificationTypeSystemAnnouncement, fmt.Sprintf("Note %d", i), "body"))
	}

	touched, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 3, touched)

	touched, err = svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 0, touched)
}

func TestRecordValidatesInput(t *testing.T) {
	svc, _ := newInboxService(t)

	err := svc.Record(context.Background(), uuid.Nil, enums.NotificationTypeOrderAlert, "title", "body")
	require.Error(t, err)

	err = svc.Record(context.Background(), uuid.New(), enums.NotificationTypeOrderAlert, "", "body")
	require.Error(t, err)
}
