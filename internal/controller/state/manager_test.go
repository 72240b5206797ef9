package state

import (
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestManagerDialog(t *testing.T) {
	c := clock.NewFixed(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	sm := NewManager(c.Now)

	assert.Equal(t, StateNone, sm.GetState(1))

	sm.Start(1, StateClaimDestination, map[string]any{KeyConnectionID: int64(5)})
	assert.Equal(t, StateClaimDestination, sm.GetState(1))
	v, ok := sm.GetData(1, KeyConnectionID)
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)

	sm.ClearState(1)
	assert.Equal(t, StateNone, sm.GetState(1))
}

func TestManagerExpiry(t *testing.T) {
	c := clock.NewFixed(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	sm := NewManager(c.Now)

	sm.Start(1, StateClaimDestination, nil)
	sm.Start(2, StateClaimDestination, nil)
	c.Advance(DialogTTL + time.Second)
	sm.Start(3, StateClaimDestination, nil)

	assert.Equal(t, StateNone, sm.GetState(1))
	_, ok := sm.GetData(2, KeyCustomLabel)
	assert.False(t, ok)
	assert.Equal(t, 2, sm.Sweep())
	assert.Equal(t, StateClaimDestination, sm.GetState(3))
}
