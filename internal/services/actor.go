package services

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies who triggered an operation and from where
type Actor struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
	SessionID *uuid.UUID
}

type actorKey struct{}

// WithActor attaches the acting user to ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user, or an anonymous actor
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey{}).(Actor); ok {
		return actor
	}
	return Actor{}
}

// actorID returns the acting user id or uuid.Nil
func actorID(ctx context.Context) uuid.UUID {
	if id := ActorFromContext(ctx).UserID; id != nil {
		return *id
	}
	return uuid.Nil
}
