package domain

import (
	"testing"
	"time"

	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsActive_NoGrant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsActive(nil, now))
	assert.False(t, IsActive(&communitydomain.Community{}, now))
}

func TestIsActive_PermanentGrant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	grantedAt := now.Add(-24 * time.Hour)

	c := &communitydomain.Community{FullAccessGrantedAt: &grantedAt}
	assert.True(t, IsActive(c, now))
	assert.True(t, IsActive(c, now.Add(100*365*24*time.Hour)))
}

func TestIsActive_ExpiryBoundary(t *testing.T) {
	grantedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiresAt := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	c := &communitydomain.Community{
		FullAccessGrantedAt: &grantedAt,
		FullAccessExpiresAt: &expiresAt,
	}

	assert.True(t, IsActive(c, expiresAt.Add(-time.Nanosecond)))
	// A grant is active strictly before its expiry instant, not at it.
	assert.False(t, IsActive(c, expiresAt))
	assert.False(t, IsActive(c, expiresAt.Add(time.Nanosecond)))
}
