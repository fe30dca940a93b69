// Package scanlog records gate pass scans made from this device.
package scanlog

import (
	"fmt"
	"time"
)

// Result is the outcome of a scan.
type Result string

const (
	ResultAdmitted Result = "admitted"
	ResultRejected Result = "rejected"
	ResultInvalid  Result = "invalid"
)

// Valid reports whether r is one of the known results.
func (r Result) Valid() bool {
	switch r {
	case ResultAdmitted, ResultRejected, ResultInvalid:
		return true
	}
	return false
}

// Scan is one gate scan attempt.
type Scan struct {
	ID          int64     `json:"id"`
	CommunityID string    `json:"community_id,omitempty"`
	Payload     string    `json:"payload"`
	PassID      string    `json:"pass_id,omitempty"`
	VisitorID   string    `json:"visitor_id,omitempty"`
	Result      Result    `json:"result"`
	Message     string    `json:"message,omitempty"`
	ScannedAt   time.Time `json:"scanned_at"`
}

func (s *Scan) String() string {
	if s.Message != "" {
		return fmt.Sprintf("%s %s (%s)", s.Result, s.PassID, s.Message)
	}
	return fmt.Sprintf("%s %s", s.Result, s.PassID)
}
