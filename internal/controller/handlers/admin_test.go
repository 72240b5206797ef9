package handlers

import (
	"testing"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnection(t *testing.T) {
	conn, err := parseConnection("Bus 42; 9:15; Hauptbahnhof; 5")
	require.NoError(t, err)
	assert.Equal(t, "Bus 42", conn.Line)
	assert.Equal(t, model.NewTimeOfDay(9, 15), conn.Departure)
	assert.Equal(t, "Hauptbahnhof", conn.Stop)
	assert.Equal(t, 5, conn.Capacity)

	conn, err = parseConnection("Tram 3;10:00;Markt")
	require.NoError(t, err)
	assert.Zero(t, conn.Capacity)

	_, err = parseConnection("Bus 42; 9:15")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = parseConnection("Bus 42; neun; Markt")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = parseConnection("Bus 42; 09:15; Markt; viele")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, []string{"1", "14:00-15:00"}, commandArgs("/addslot 1   14:00-15:00"))
	assert.Nil(t, commandArgs("/overview"))
	assert.Equal(t, "Große Halle", commandTail("/addplace   Große Halle "))
	assert.Empty(t, commandTail("/addplace"))
}
