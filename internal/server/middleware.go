package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/koomyhq/koomy/internal/actorctx"
)

// HeaderActor carries the authenticated principal set by the edge proxy,
// e.g. "operator:184467", "user:184467" or "system". The service trusts it;
// terminating the outer auth protocol is the gateway's job.
const HeaderActor = "X-Actor"

// ActorRequired rejects requests without an actor header and stashes the
// actor id for audit attribution downstream.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := strings.TrimSpace(c.GetHeader(HeaderActor))
		if subject == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if actorID, err := snowflake.ParseString(actorSubjectID(subject)); err == nil {
			ctx := actorctx.WithActorID(c.Request.Context(), actorID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// authorizeAction gates a route on the casbin policy. Routes with an :id
// path parameter are checked in that community's scope; the rest are
// platform-wide.
func (s *Server) authorizeAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := strings.TrimSpace(c.GetHeader(HeaderActor))
		if subject == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		communityID := strings.TrimSpace(c.Param("id"))
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, communityID, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// actorSubjectID strips the type prefix, keeping the raw id for audit rows.
func actorSubjectID(subject string) string {
	if _, id, found := strings.Cut(subject, ":"); found {
		return id
	}
	return subject
}
