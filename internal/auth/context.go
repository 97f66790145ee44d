// Package auth extracts a caller identity hint from the incoming request.
// Authentication itself is delegated to an upstream gateway; the value extracted here is used only as
// the actor_id recorded in a movement's metadata, never for authorization.
package auth

import (
	"context"
	"net/http"

	"google.golang.org/grpc/metadata"
)

type contextKey string

const actorContextKey contextKey = "actor_id"

// WithActorID stashes an actor id on a context, for middleware that has
// already resolved it (e.g. the REST actor-context middleware).
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

// ActorID returns the caller identity hint, checking the context value
// first (REST path) and falling back to gRPC metadata (RPC path).
func ActorID(ctx context.Context) string {
	if val, ok := ctx.Value(actorContextKey).(string); ok && val != "" {
		return val
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-actor-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// ActorIDFromHeader reads the actor header off an inbound HTTP request.
func ActorIDFromHeader(r *http.Request) string {
	return r.Header.Get("X-Actor-Id")
}
