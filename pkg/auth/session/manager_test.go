package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *memoryStore) {
	store := newMemoryStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	token, err := manager.Generate(ctx, "access-123")
	require.NoError(t, err)
	assert.Equal(t, token, store.data[store.AccessSessionKey("access-123")])

	_, _, err = manager.Rotate(ctx, "access-123", "wrong")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	newAccessID, newToken, err := manager.Rotate(ctx, "access-123", token)
	require.NoError(t, err)
	assert.NotEqual(t, "access-123", newAccessID)
	assert.NotEqual(t, token, newToken)

	_, oldExists := store.data[store.AccessSessionKey("access-123")]
	assert.False(t, oldExists, "rotation must delete the old session")
	assert.Equal(t, newToken, store.data[store.AccessSessionKey(newAccessID)])
}

func TestManagerRotateUnknownSession(t *testing.T) {
	manager, _ := newTestManager()

	_, _, err := manager.Rotate(context.Background(), "never-issued", "anything")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerRevoke(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	_, err := manager.Generate(ctx, "to-revoke")
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(ctx, "to-revoke"))

	_, exists := store.data[store.AccessSessionKey("to-revoke")]
	assert.False(t, exists)
}

func TestManagerHasSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	ok, err := manager.HasSession(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = manager.Generate(ctx, "present")
	require.NoError(t, err)

	ok, err = manager.HasSession(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)
}
