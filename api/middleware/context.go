package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxAgentID contextKey = "agent_id"
)

func valueOr[T any](ctx context.Context, key contextKey, fallback T) T {
	if ctx == nil {
		return fallback
	}
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return fallback
}

func withValue(ctx context.Context, key contextKey, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	return valueOr(ctx, ctxUserID, uuid.Nil)
}

func RoleFromContext(ctx context.Context) string {
	return valueOr(ctx, ctxRole, "")
}

// AgentIDFromContext returns the agent row id carried by agent tokens,
// or uuid.Nil for customers and admins.
func AgentIDFromContext(ctx context.Context) uuid.UUID {
	return valueOr(ctx, ctxAgentID, uuid.Nil)
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return withValue(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, ctxRole, role)
}

func WithAgentID(ctx context.Context, agentID uuid.UUID) context.Context {
	return withValue(ctx, ctxAgentID, agentID)
}
