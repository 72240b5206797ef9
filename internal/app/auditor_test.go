package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) OverAllocated(ctx context.Context) ([]model.ConnectionUsage, error) {
	args := m.Called(ctx)
	over, _ := args.Get(0).([]model.ConnectionUsage)
	return over, args.Error(1)
}

func TestAuditLogsOverAllocatedConnections(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	conn := &model.Connection{ID: 3, Line: "Bus 42", Departure: model.NewTimeOfDay(9, 15), Stop: "Markt", Capacity: 1}

	source := &mockSource{}
	source.On("OverAllocated", mock.Anything).Return([]model.ConnectionUsage{{Connection: conn, Used: 2}}, nil).Once()
	auditor := NewCapacityAuditor(source, time.Hour, zap.New(core))

	assert.Equal(t, 1, auditor.Audit(context.Background()))
	source.AssertExpectations(t)

	entries := logs.FilterMessage("Connection over-allocated").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, int64(2), entries[0].ContextMap()["used"])
	}
}

func TestAuditSurvivesStorageErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	source := &mockSource{}
	source.On("OverAllocated", mock.Anything).Return(nil, errors.New("down")).Once()
	auditor := NewCapacityAuditor(source, time.Hour, zap.New(core))

	assert.Zero(t, auditor.Audit(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Failed to audit connection capacity").Len())
	source.AssertExpectations(t)
}

func TestRunStopsOnCancel(t *testing.T) {
	source := &mockSource{}
	source.On("OverAllocated", mock.Anything).Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	auditor := NewCapacityAuditor(source, time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- auditor.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("auditor did not stop")
	}
	assert.GreaterOrEqual(t, len(source.Calls), 1)
}

func TestStop(t *testing.T) {
	source := &mockSource{}
	source.On("OverAllocated", mock.Anything).Return(nil, nil)
	auditor := NewCapacityAuditor(source, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- auditor.Run(context.Background()) }()

	time.Sleep(5 * time.Millisecond)
	auditor.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("auditor did not stop")
	}
}
