package overstay

import (
	"sort"
	"time"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

// IsCheckedIn reports whether a visitor is currently inside: an entry signal
// (checkInAt or status checked_in) without an exit signal (checkOutAt or
// status checked_out).
func IsCheckedIn(v *visitor.Visitor) bool {
	if v == nil {
		return false
	}
	entered := v.CheckInAt != nil || v.HasStatus(visitor.StatusCheckedIn)
	left := v.CheckOutAt != nil || v.HasStatus(visitor.StatusCheckedOut)
	return entered && !left
}

// ElapsedMinutes returns whole minutes since the visitor's check-in, or since
// the expected arrival when no check-in time was recorded. It returns 0 when
// neither timestamp is present or the reference time is in the future.
func ElapsedMinutes(v *visitor.Visitor, now time.Time) int {
	if v == nil {
		return 0
	}

	ref := v.CheckInAt
	if ref == nil {
		ref = v.ExpectedAt
	}
	if ref == nil {
		return 0
	}

	d := now.Sub(*ref)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// IsOverstaying reports whether a checked-in visitor has been inside for
// strictly longer than the limit for their type.
func IsOverstaying(v *visitor.Visitor, limits Limits, now time.Time) bool {
	if !IsCheckedIn(v) {
		return false
	}
	return ElapsedMinutes(v, now) > limits.For(v.VisitorType)
}

// Evaluation is the overstay state of one visitor at a point in time.
type Evaluation struct {
	Visitor     *visitor.Visitor `json:"visitor"`
	Inside      bool             `json:"inside"`
	Elapsed     int              `json:"elapsedMinutes"`
	Limit       int              `json:"limitMinutes"`
	Overstay    int              `json:"overstayMinutes"`
	Overstaying bool             `json:"overstaying"`
	Severity    Severity         `json:"severity,omitempty"`
}

// Evaluate computes the overstay state for a single visitor.
func Evaluate(v *visitor.Visitor, limits Limits, now time.Time) Evaluation {
	e := Evaluation{
		Visitor: v,
		Inside:  IsCheckedIn(v),
		Elapsed: ElapsedMinutes(v, now),
	}
	if v != nil {
		e.Limit = limits.For(v.VisitorType)
	}

	if e.Inside && e.Elapsed > e.Limit {
		e.Overstaying = true
		e.Overstay = e.Elapsed - e.Limit
		e.Severity = ClassifySeverity(e.Overstay, e.Limit)
	}

	return e
}

// EvaluateAll evaluates the visitors that are currently inside. Overstaying
// visitors come first, worst overstay first; the rest follow by elapsed time.
func EvaluateAll(visitors []*visitor.Visitor, limits Limits, now time.Time) []Evaluation {
	evals := make([]Evaluation, 0, len(visitors))
	for _, v := range visitors {
		if !IsCheckedIn(v) {
			continue
		}
		evals = append(evals, Evaluate(v, limits, now))
	}

	sort.SliceStable(evals, func(i, j int) bool {
		a, b := evals[i], evals[j]
		if a.Overstaying != b.Overstaying {
			return a.Overstaying
		}
		if a.Overstaying {
			if a.Severity.Rank() != b.Severity.Rank() {
				return a.Severity.Rank() > b.Severity.Rank()
			}
			return a.Overstay > b.Overstay
		}
		return a.Elapsed > b.Elapsed
	})

	return evals
}

// Summary counts evaluations by state.
type Summary struct {
	Inside      int              `json:"inside"`
	Overstaying int              `json:"overstaying"`
	BySeverity  map[Severity]int `json:"bySeverity"`
}

// Summarize tallies a set of evaluations.
func Summarize(evals []Evaluation) Summary {
	s := Summary{BySeverity: make(map[Severity]int)}
	for _, e := range evals {
		if e.Inside {
			s.Inside++
		}
		if e.Overstaying {
			s.Overstaying++
			s.BySeverity[e.Severity]++
		}
	}
	return s
}
