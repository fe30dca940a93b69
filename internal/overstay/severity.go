package overstay

// Severity grades how far past the limit an overstaying visitor is.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityAlert    Severity = "ALERT"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

const (
	// Ratios of minutes-past-limit to the limit itself.
	warningRatio  = 1.5
	criticalRatio = 3.0
)

// ClassifySeverity grades an overstay. overstayMinutes is the time past the
// limit, not the total elapsed time. The highest tier whose ratio is met wins.
func ClassifySeverity(overstayMinutes, limitMinutes int) Severity {
	if limitMinutes <= 0 {
		return SeverityCritical
	}

	ratio := float64(overstayMinutes) / float64(limitMinutes)
	switch {
	case ratio >= criticalRatio:
		return SeverityCritical
	case ratio >= warningRatio:
		return SeverityWarning
	default:
		return SeverityAlert
	}
}

// Label returns a human-readable label for the severity.
func (s Severity) Label() string {
	switch s {
	case SeverityAlert:
		return "Overstay"
	case SeverityWarning:
		return "Long overstay"
	case SeverityCritical:
		return "Critical overstay"
	default:
		return "Within limit"
	}
}

// Color returns the hex color used to tag the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityAlert:
		return "#F59E0B"
	case SeverityWarning:
		return "#F97316"
	case SeverityCritical:
		return "#DC2626"
	default:
		return "#16A34A"
	}
}

// Icon returns a single-glyph marker for terminal output.
func (s Severity) Icon() string {
	switch s {
	case SeverityAlert:
		return "!"
	case SeverityWarning:
		return "!!"
	case SeverityCritical:
		return "✗"
	default:
		return "✓"
	}
}

// Rank orders severities for sorting, higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityAlert:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}
