package overstay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

type saverFunc func(ctx context.Context, communityID string, limits Limits) bool

func (f saverFunc) Save(ctx context.Context, communityID string, limits Limits) bool {
	return f(ctx, communityID, limits)
}

func TestEditorLifecycle(t *testing.T) {
	e := NewEditor(DefaultLimits())
	assert.Equal(t, StateLoaded, e.State())
	assert.False(t, e.Dirty())

	assert.Equal(t, 300, e.Set(visitor.Guest, 300))
	assert.Equal(t, StateEditing, e.State())
	assert.True(t, e.Dirty())
	assert.Equal(t, []Change{{Type: visitor.Guest, Before: 240, After: 300}}, e.Changes())

	var pushed Limits
	err := e.Save(context.Background(), saverFunc(func(_ context.Context, id string, l Limits) bool {
		assert.Equal(t, "c-1", id)
		pushed = l
		return true
	}), "c-1")
	require.NoError(t, err)
	assert.Equal(t, StateSaved, e.State())
	assert.Equal(t, 300, pushed[visitor.Guest])
	assert.Equal(t, 300, e.Original()[visitor.Guest])
	assert.False(t, e.Dirty())
}

func TestEditorSaveFailureKeepsDraft(t *testing.T) {
	e := NewEditor(DefaultLimits())
	e.Set(visitor.Delivery, 20)

	err := e.Save(context.Background(), saverFunc(func(context.Context, string, Limits) bool { return false }), "c-1")
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.Equal(t, StateEditing, e.State())
	assert.Equal(t, 20, e.Draft()[visitor.Delivery])
	assert.Equal(t, 10, e.Original()[visitor.Delivery])
}

func TestEditorRejectsConcurrentSave(t *testing.T) {
	e := NewEditor(DefaultLimits())
	e.Set(visitor.Staff, 480)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- e.Save(context.Background(), saverFunc(func(context.Context, string, Limits) bool {
			close(inFlight)
			<-release
			return true
		}), "c-1")
	}()

	<-inFlight
	err := e.Save(context.Background(), saverFunc(func(context.Context, string, Limits) bool {
		t.Error("second save should not reach the backend")
		return true
	}), "c-1")
	assert.ErrorIs(t, err, ErrSaveInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestEditorSetTextRevertsInvalid(t *testing.T) {
	e := NewEditor(DefaultLimits())
	e.Set(visitor.Guest, 180)

	got, err := e.SetText(visitor.Guest, "three hours")
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Equal(t, 180, got)
	assert.Equal(t, 180, e.Draft()[visitor.Guest])

	got, err = e.SetText(visitor.Guest, "2000")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, got)
}

func TestEditorStep(t *testing.T) {
	tests := []struct {
		name  string
		start int
		n     int
		want  int
	}{
		{"up in fives", 10, 1, 15},
		{"down in fives", 10, -1, 5},
		{"floor", 5, -3, MinLimit},
		{"crosses into quarter hours", 55, 2, 75},
		{"down from an hour", 60, -1, 55},
		{"hours", 240, 1, 300},
		{"down from four hours", 240, -1, 225},
		{"ceiling", 1400, 2, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(DefaultLimits())
			e.Set(visitor.Other, tt.start)
			assert.Equal(t, tt.want, e.Step(visitor.Other, tt.n))
		})
	}
}

func TestEditorApplyPreset(t *testing.T) {
	e := NewEditor(DefaultLimits())

	got, err := e.ApplyPreset(visitor.CabAuto, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, got)

	got, err = e.ApplyPreset(visitor.CabAuto, 31)
	assert.Error(t, err)
	assert.Equal(t, 30, got)
}

func TestEditorResets(t *testing.T) {
	original := DefaultLimits()
	original[visitor.Guest] = 200
	e := NewEditor(original)

	e.Set(visitor.Guest, 400)
	e.Set(visitor.Staff, 700)
	e.ResetField(visitor.Guest)
	assert.Equal(t, 200, e.Draft()[visitor.Guest])
	assert.Equal(t, StateEditing, e.State())

	e.ResetField(visitor.Staff)
	assert.False(t, e.Dirty())
	assert.Equal(t, StateLoaded, e.State())

	e.ResetToDefaults()
	assert.Equal(t, DefaultLimits(), e.Draft())
	assert.True(t, e.Dirty())

	e.Discard()
	assert.Equal(t, StateDiscarded, e.State())
	assert.Equal(t, original, e.Draft())
}

func TestEditorSaveValidates(t *testing.T) {
	e := ResumeEditor(DefaultLimits(), Limits{visitor.Guest: 2})
	err := e.Save(context.Background(), saverFunc(func(context.Context, string, Limits) bool {
		t.Error("invalid draft should not be pushed")
		return true
	}), "c-1")
	assert.Error(t, err)
}

func TestResumeEditor(t *testing.T) {
	draft := DefaultLimits()
	draft[visitor.Delivery] = 25

	e := ResumeEditor(DefaultLimits(), draft)
	assert.Equal(t, StateEditing, e.State())
	assert.Equal(t, 25, e.Draft()[visitor.Delivery])

	e = ResumeEditor(DefaultLimits(), DefaultLimits())
	assert.Equal(t, StateLoaded, e.State())
}
