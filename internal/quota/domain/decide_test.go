package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_CapIsInclusive(t *testing.T) {
	max := 100

	assert.True(t, Decide(0, &max, false))
	assert.True(t, Decide(99, &max, false))
	// The 100th member fills the community; the 101st is refused.
	assert.False(t, Decide(100, &max, false))
	assert.False(t, Decide(101, &max, false))
}

func TestDecide_NilCapAdmitsEverything(t *testing.T) {
	assert.True(t, Decide(0, nil, false))
	assert.True(t, Decide(1_000_000, nil, false))
}

func TestDecide_FullAccessShortCircuitsCap(t *testing.T) {
	max := 2

	assert.False(t, Decide(2, &max, false))
	assert.True(t, Decide(2, &max, true))
	assert.True(t, Decide(5_000, &max, true))
}

func TestDecide_ZeroCap(t *testing.T) {
	max := 0

	assert.False(t, Decide(0, &max, false))
	assert.True(t, Decide(0, &max, true))
}
