package middleware

import (
	"context"

	"github.com/olimjonn/warehub-backend/internal/policy"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor, or nil when the request
// went through no auth middleware.
func ActorFromContext(ctx context.Context) *policy.Actor {
	if ctx == nil {
		return nil
	}
	if actor, ok := ctx.Value(ctxActor).(*policy.Actor); ok {
		return actor
	}
	return nil
}

// WithActor seeds the context with the resolved actor.
func WithActor(ctx context.Context, actor *policy.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
