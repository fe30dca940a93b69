package overstay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

var (
	// ErrSaveFailed is returned when the backend rejects or fails a save.
	// The draft is kept so the admin can retry.
	ErrSaveFailed = errors.New("saving overstay limits failed")
	// ErrSaveInProgress is returned when a save is attempted while another is running.
	ErrSaveInProgress = errors.New("a save is already in progress")
)

// EditState is where an edit session is in its lifecycle.
type EditState int

const (
	StateLoaded EditState = iota
	StateEditing
	StateSaved
	StateDiscarded
)

func (s EditState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEditing:
		return "editing"
	case StateSaved:
		return "saved"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// Presets are the quick-pick values offered for any visitor type.
var Presets = []int{5, 10, 15, 30, 60, 120, 240, 480, 720, 1440}

// Saver persists a full limits mapping.
type Saver interface {
	Save(ctx context.Context, communityID string, limits Limits) bool
}

// Change is one visitor type whose draft value differs from the original.
type Change struct {
	Type   visitor.Type `json:"type"`
	Before int          `json:"before"`
	After  int          `json:"after"`
}

// Editor holds an admin's draft of a community's limits against the
// last-saved original.
type Editor struct {
	original Limits
	draft    Limits
	state    EditState
	saving   atomic.Bool
}

// NewEditor starts an edit session from the loaded limits.
func NewEditor(original Limits) *Editor {
	return &Editor{
		original: original.Clone(),
		draft:    original.Clone(),
		state:    StateLoaded,
	}
}

// ResumeEditor restores a session whose draft was persisted earlier.
func ResumeEditor(original, draft Limits) *Editor {
	e := NewEditor(original)
	e.draft = draft.Clone()
	if e.Dirty() {
		e.state = StateEditing
	}
	return e
}

// State returns the current lifecycle state.
func (e *Editor) State() EditState { return e.state }

// Original returns a copy of the last-saved limits.
func (e *Editor) Original() Limits { return e.original.Clone() }

// Draft returns a copy of the limits being edited.
func (e *Editor) Draft() Limits { return e.draft.Clone() }

// Dirty reports whether the draft differs from the original.
func (e *Editor) Dirty() bool {
	return !e.draft.Equal(e.original)
}

// Changes lists the types whose draft value differs from the original.
func (e *Editor) Changes() []Change {
	var changes []Change
	keys := e.draft.Clone()
	for k, v := range e.original {
		if _, ok := keys[k]; !ok {
			keys[k] = v
		}
	}
	for _, t := range keys.Keys() {
		before, after := e.original.For(string(t)), e.draft.For(string(t))
		if before != after {
			changes = append(changes, Change{Type: t, Before: before, After: after})
		}
	}
	return changes
}

// Set stores a clamped value for a visitor type and returns the stored value.
func (e *Editor) Set(t visitor.Type, minutes int) int {
	v := ClampLimit(minutes)
	e.draft[t] = v
	e.touch()
	return v
}

// SetText applies free-text input. Invalid text leaves the field at its
// last valid value and returns ErrInvalidLimit alongside that value.
func (e *Editor) SetText(t visitor.Type, text string) (int, error) {
	v, err := ParseLimit(text)
	if err != nil {
		return e.draft.For(string(t)), err
	}
	return e.Set(t, v), nil
}

// StepSize returns the stepper increment for a current value.
func StepSize(current int) int {
	switch {
	case current < 60:
		return 5
	case current < 240:
		return 15
	default:
		return 60
	}
}

// Step moves a field by n stepper increments (negative n steps down).
func (e *Editor) Step(t visitor.Type, n int) int {
	v := e.draft.For(string(t))
	for ; n > 0; n-- {
		v = ClampLimit(v + StepSize(v))
	}
	for ; n < 0; n++ {
		v = ClampLimit(v - StepSize(v-1))
	}
	return e.Set(t, v)
}

// ApplyPreset sets a field to one of the preset values.
func (e *Editor) ApplyPreset(t visitor.Type, minutes int) (int, error) {
	for _, p := range Presets {
		if p == minutes {
			return e.Set(t, minutes), nil
		}
	}
	return e.draft.For(string(t)), fmt.Errorf("%d is not a preset", minutes)
}

// ResetField reverts one type to its original value.
func (e *Editor) ResetField(t visitor.Type) {
	if v, ok := e.original[t]; ok {
		e.draft[t] = v
	} else {
		delete(e.draft, t)
	}
	e.touch()
}

// ResetToDefaults replaces the whole draft with the compiled-in defaults.
func (e *Editor) ResetToDefaults() {
	e.draft = DefaultLimits()
	e.touch()
}

// Discard reverts the draft to the original.
func (e *Editor) Discard() {
	e.draft = e.original.Clone()
	e.state = StateDiscarded
}

// Save validates and pushes the draft. On success the draft becomes the new
// original; on failure the draft is kept and ErrSaveFailed is returned.
func (e *Editor) Save(ctx context.Context, saver Saver, communityID string) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer e.saving.Store(false)

	if err := e.draft.Validate(); err != nil {
		return err
	}

	draft := e.draft.Clone()
	if !saver.Save(ctx, communityID, draft) {
		return ErrSaveFailed
	}

	e.original = draft
	e.state = StateSaved
	return nil
}

func (e *Editor) touch() {
	if e.Dirty() {
		e.state = StateEditing
	} else if e.state == StateEditing {
		e.state = StateLoaded
	}
}
