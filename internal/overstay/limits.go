// Package overstay decides whether visitors have stayed past the time
// allowed for their visitor type, and manages the per-community limits.
package overstay

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

const (
	// MinLimit and MaxLimit bound any single limit, in minutes.
	MinLimit = 5
	MaxLimit = 1440

	// DefaultOtherLimit is used when a mapping lacks even the OTHER key.
	DefaultOtherLimit = 120
)

// ErrInvalidLimit is returned for limit input that is not a number.
var ErrInvalidLimit = errors.New("limit must be a whole number of minutes")

// Limits maps a visitor type to the minutes a visitor of that type may stay.
type Limits map[visitor.Type]int

// DefaultLimits returns a fresh copy of the compiled-in limits.
func DefaultLimits() Limits {
	return Limits{
		visitor.Delivery: 10,
		visitor.Guest:    240,
		visitor.Staff:    600,
		visitor.CabAuto:  15,
		visitor.Other:    DefaultOtherLimit,
	}
}

// For returns the limit for a raw visitor type. Unknown or empty types use
// OTHER; a mapping without OTHER falls back to DefaultOtherLimit.
func (l Limits) For(visitorType string) int {
	if v, ok := l[visitor.ParseType(visitorType)]; ok {
		return v
	}
	if v, ok := l[visitor.Other]; ok {
		return v
	}
	return DefaultOtherLimit
}

// Clone returns an independent copy.
func (l Limits) Clone() Limits {
	if l == nil {
		return nil
	}
	return maps.Clone(l)
}

// Equal reports whether both mappings hold the same keys and values.
func (l Limits) Equal(other Limits) bool {
	return maps.Equal(l, other)
}

// Keys returns the known visitor types first, in their canonical order,
// followed by any extra keys sorted alphabetically.
func (l Limits) Keys() []visitor.Type {
	keys := make([]visitor.Type, 0, len(l))
	for _, k := range visitor.KnownTypes {
		if _, ok := l[k]; ok {
			keys = append(keys, k)
		}
	}

	var extra []visitor.Type
	for k := range l {
		if !k.IsKnown() {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)

	return append(keys, extra...)
}

var validate = validator.New()

// Validate checks every key is a non-empty uppercase type and every value
// is within [MinLimit, MaxLimit].
func (l Limits) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("limits are empty")
	}
	tag := fmt.Sprintf("dive,keys,required,uppercase,endkeys,min=%d,max=%d", MinLimit, MaxLimit)
	if err := validate.Var(map[visitor.Type]int(l), tag); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}
	return nil
}

// Wire converts limits to the string-keyed shape the backend expects.
func (l Limits) Wire() map[string]int {
	out := make(map[string]int, len(l))
	for k, v := range l {
		out[string(k)] = v
	}
	return out
}

// ClampLimit bounds a proposed limit to [MinLimit, MaxLimit].
func ClampLimit(v int) int {
	if v < MinLimit {
		return MinLimit
	}
	if v > MaxLimit {
		return MaxLimit
	}
	return v
}

// ParseLimit parses free-text limit input. Non-numeric text returns
// ErrInvalidLimit; numbers outside the allowed range are clamped.
func ParseLimit(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil {
		if f, ferr := strconv.ParseFloat(text, 64); ferr == nil && isWhole(f) {
			return clampFloat(f), nil
		}
		return 0, ErrInvalidLimit
	}
	return ClampLimit(n), nil
}

// MergeRemote overlays a remote overstayLimits value onto the defaults.
// A missing or null value yields the defaults. Keys whose values are not
// whole numbers are skipped, out-of-range values are clamped, and anything
// other than a JSON object is an error.
func MergeRemote(raw json.RawMessage) (Limits, error) {
	merged := DefaultLimits()

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return merged, nil
	}

	var remote map[string]json.RawMessage
	if err := json.Unmarshal(raw, &remote); err != nil {
		return DefaultLimits(), fmt.Errorf("decoding overstay limits: %w", err)
	}

	for key, val := range remote {
		t := visitor.ParseType(key)
		if t == "" {
			continue
		}
		var f *float64
		if err := json.Unmarshal(val, &f); err != nil || f == nil || !isWhole(*f) {
			continue
		}
		merged[t] = clampFloat(*f)
	}

	return merged, nil
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func clampFloat(f float64) int {
	if f < MinLimit {
		return MinLimit
	}
	if f > MaxLimit {
		return MaxLimit
	}
	return int(f)
}
