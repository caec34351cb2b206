// Package actorctx carries the authenticated operator identity through
// request contexts. Authorization itself happens at the HTTP boundary; the
// core services only read the actor for audit attribution.
package actorctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type actorKey struct{}

// WithActorID stores the acting user's ID in the context.
func WithActorID(ctx context.Context, actorID snowflake.ID) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorIDFromContext returns the acting user's ID, if set.
func ActorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(actorKey{}).(type) {
	case snowflake.ID:
		return typed, true
	case int64:
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
