// Package visitor provides the visitor record model and gate pass parsing.
package visitor

import (
	"strings"
	"time"
)

// Type is the category a visitor was registered under.
type Type string

const (
	Delivery Type = "DELIVERY"
	Guest    Type = "GUEST"
	Staff    Type = "STAFF"
	CabAuto  Type = "CAB_AUTO"
	Other    Type = "OTHER"
)

// KnownTypes is the set of visitor types the backend issues.
var KnownTypes = []Type{Delivery, Guest, Staff, CabAuto, Other}

// ParseType normalizes raw input to the uppercase form used for lookups.
// It does not validate; unknown values are returned as-is.
func ParseType(s string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(s)))
}

// IsKnown checks if a visitor type is one the backend issues.
func (t Type) IsKnown() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the visitor type.
func (t Type) Label() string {
	switch t {
	case Delivery:
		return "Delivery"
	case Guest:
		return "Guest"
	case Staff:
		return "Staff"
	case CabAuto:
		return "Cab/Auto"
	case Other:
		return "Other"
	default:
		return string(t)
	}
}

// Status is the backend's string state for a visitor.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExpected   Status = "expected"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusRejected   Status = "rejected"
)

// Visitor is a visitor record as returned by the backend.
// Timestamps are nil when the backend omits them.
type Visitor struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Flat        string     `json:"flat,omitempty"`
	CommunityID string     `json:"communityId,omitempty"`
	VisitorType string     `json:"visitorType"`
	Status      Status     `json:"status,omitempty"`
	CheckInAt   *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt  *time.Time `json:"checkOutAt,omitempty"`
	ExpectedAt  *time.Time `json:"expectedAt,omitempty"`
}

// Type returns the normalized visitor type.
func (v *Visitor) Type() Type {
	return ParseType(v.VisitorType)
}

// HasStatus reports whether the visitor's status matches s, ignoring case.
func (v *Visitor) HasStatus(s Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(v.Status)), string(s))
}

// DisplayName returns the name, or the ID when the name is blank.
func (v *Visitor) DisplayName() string {
	if strings.TrimSpace(v.Name) == "" {
		return v.ID
	}
	return v.Name
}
