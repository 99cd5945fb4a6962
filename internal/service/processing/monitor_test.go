package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

type scriptedSource struct {
	rounds [][]models.StageView
	err    error
	calls  int
}

func (s *scriptedSource) ActiveRuns(context.Context) ([]models.StageView, error) {
	if s.err != nil {
		return nil, s.err
	}
	round := s.rounds[s.calls%len(s.rounds)]
	s.calls++
	return round, nil
}

func TestMonitorReportsOnlyChanges(t *testing.T) {
	src := &scriptedSource{rounds: [][]models.StageView{
		{{BatchID: "B-1", Stage: models.StageWash}},
		{{BatchID: "B-1", Stage: models.StageWash}},
		{{BatchID: "B-1", Stage: models.StageDrain}},
		{},
		{{BatchID: "B-1", Stage: models.StageComplete}},
	}}
	m := NewMonitor(src, 0, nil)
	ctx := context.Background()

	first, err := m.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Transition{{BatchID: "B-1", To: models.StageWash}}, first)

	second, err := m.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)

	third, err := m.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Transition{{BatchID: "B-1", From: models.StageWash, To: models.StageDrain}}, third)

	_, err = m.Poll(ctx)
	require.NoError(t, err)

	// forgotten after it left the active set
	fifth, err := m.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Transition{{BatchID: "B-1", To: models.StageComplete}}, fifth)
}

func TestMonitorPropagatesSourceErrors(t *testing.T) {
	m := NewMonitor(&scriptedSource{err: errors.New("boom")}, time.Second, nil)

	_, err := m.Poll(context.Background())

	assert.Error(t, err)
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	src := &scriptedSource{rounds: [][]models.StageView{{}}}
	m := NewMonitor(src, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
