package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vrptw/core/factory"
)

type recordRecorder struct {
	builds, solves, flushes int
	err                     error
}

func (r *recordRecorder) RecordBuild(BuildEvent) error {
	r.builds++
	return r.err
}

func (r *recordRecorder) RecordSolve(SolveEvent) error {
	r.solves++
	return r.err
}

func (r *recordRecorder) Flush() error {
	r.flushes++
	return nil
}

func TestMultiRecorder(t *testing.T) {
	r1 := &recordRecorder{err: errors.New("down")}
	r2 := &recordRecorder{}
	m := NewMultiRecorder(r1, r2, NopRecorder{})

	assert.Error(t, m.RecordBuild(BuildEvent{}))
	assert.Error(t, m.RecordSolve(SolveEvent{}))
	assert.NoError(t, m.Flush())
	assert.Equal(t, 1, r2.builds, "a failing recorder must not starve the others")
	assert.Equal(t, 1, r2.solves)
	assert.Equal(t, 1, r1.flushes)
	assert.Equal(t, 1, r2.flushes)
}

func TestNewRecorder(t *testing.T) {
	name := "test-recorder"
	require.NoError(t, RegisterRecorder(name, func(map[string]any) (Recorder, error) {
		return &recordRecorder{}, nil
	}))
	assert.Error(t, RegisterRecorder(name, func(map[string]any) (Recorder, error) { return nil, nil }))
	assert.Contains(t, RegisteredRecorders(), name)

	r, err := NewRecorder(nil)
	require.NoError(t, err)
	assert.IsType(t, NopRecorder{}, r)

	r, err = NewRecorder([]factory.ModuleConfig{{Type: name}})
	require.NoError(t, err)
	assert.IsType(t, &recordRecorder{}, r)

	r, err = NewRecorder([]factory.ModuleConfig{{Type: name}, {Type: name}})
	require.NoError(t, err)
	multi, ok := r.(*MultiRecorder)
	require.True(t, ok)
	assert.Len(t, multi.Recorders, 2)

	_, err = NewRecorder([]factory.ModuleConfig{{Type: name}, {Type: "missing"}})
	assert.Error(t, err)
}
