package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/koomyhq/koomy/internal/authorization"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError_MemberLimitReached(t *testing.T) {
	err := &quotadomain.MemberLimitReachedError{Current: 50, Max: 50, PlanName: "STARTER_FREE"}

	status, payload := mapError(err)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "MEMBER_LIMIT_REACHED", payload.Code)
	assert.Equal(t, 50, payload.Details["current"])
	assert.Equal(t, 50, payload.Details["max"])
	assert.Equal(t, "STARTER_FREE", payload.Details["plan_name"])
}

func TestMapError_PlanLimitExceeded(t *testing.T) {
	err := &quotadomain.PlanLimitExceededError{Current: 120, Max: 50, PlanName: "STARTER_FREE"}

	status, payload := mapError(err)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PLAN_LIMIT_EXCEEDED", payload.Code)
	assert.Equal(t, 120, payload.Details["current"])
}

func TestMapError_NotFound(t *testing.T) {
	for _, err := range []error{
		plandomain.ErrNotFound,
		communitydomain.ErrNotFound,
		membershipdomain.ErrNotFound,
		gorm.ErrRecordNotFound,
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", payload.Type)
	}
}

func TestMapError_Validation(t *testing.T) {
	status, payload := mapError(membershipdomain.ErrInvalidEmail)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "invalid_email", payload.Errors[0].Code)
		assert.Equal(t, "email", payload.Errors[0].Field)
	}
}

func TestMapError_Conflicts(t *testing.T) {
	status, payload := mapError(communitydomain.ErrSlugTaken)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "slug_taken", payload.Code)

	status, payload = mapError(membershipdomain.ErrAlreadyMember)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_member", payload.Code)
}

func TestMapError_Authorization(t *testing.T) {
	status, payload := mapError(authorization.ErrInvalidActor)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", payload.Type)

	status, payload = mapError(authorization.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", payload.Type)

	// A user actor asking for a platform-scoped resource is denied, not a
	// server fault.
	status, payload = mapError(authorization.ErrInvalidDomain)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", payload.Type)
}

func TestMapError_RateLimited(t *testing.T) {
	status, payload := mapError(ErrTooManyJoins)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", payload.Type)
}

func TestMapError_UnknownFallsBackToInternal(t *testing.T) {
	status, payload := mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Type)
}
