package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/gatekeeper/internal/duration"
	"github.com/evcraddock/gatekeeper/internal/overstay"
	"github.com/evcraddock/gatekeeper/internal/scanlog"
	"github.com/evcraddock/gatekeeper/internal/visitor"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEvaluations prints the overstay board as a table.
func printEvaluations(w io.Writer, evals []overstay.Evaluation, all bool) error {
	rows := evals
	if !all {
		rows = rows[:0:0]
		for _, e := range evals {
			if e.Overstaying {
				rows = append(rows, e)
			}
		}
	}

	if len(rows) == 0 {
		if all {
			_, err := fmt.Fprintln(w, "No visitors inside.")
			return err
		}
		_, err := fmt.Fprintln(w, "No visitors are overstaying.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "\tVISITOR\tTYPE\tFLAT\tINSIDE\tLIMIT\tOVER\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, e := range rows {
		over := "-"
		if e.Overstaying {
			over = duration.Format(e.Overstay)
		}
		name, vtype, flat := "-", "-", "-"
		if v := e.Visitor; v != nil {
			name = truncate(v.DisplayName(), 24)
			vtype = v.Type().Label()
			if v.Flat != "" {
				flat = v.Flat
			}
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Severity.Icon(), name, vtype, flat,
			duration.Format(e.Elapsed), duration.Format(e.Limit), over, e.Severity.Label()); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printSummary prints the one-line overstay tally.
func printSummary(w io.Writer, s overstay.Summary, now time.Time) error {
	_, err := fmt.Fprintf(w, "\n%s  inside: %d  overstaying: %d (critical %d, long %d, overstay %d)\n",
		now.Local().Format("15:04"), s.Inside, s.Overstaying,
		s.BySeverity[overstay.SeverityCritical],
		s.BySeverity[overstay.SeverityWarning],
		s.BySeverity[overstay.SeverityAlert])
	return err
}

// printVisitors prints visitor records with live durations for those inside.
func printVisitors(w io.Writer, visitors []*visitor.Visitor, limits overstay.Limits, now time.Time) error {
	if len(visitors) == 0 {
		_, err := fmt.Fprintln(w, "No visitors found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tVISITOR\tTYPE\tFLAT\tSTATUS\tINSIDE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, v := range visitors {
		inside := "-"
		if overstay.IsCheckedIn(v) {
			e := overstay.Evaluate(v, limits, now)
			inside = duration.Format(e.Elapsed)
			if e.Overstaying {
				inside += " " + e.Severity.Icon()
			}
		}
		status := string(v.Status)
		if status == "" {
			status = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, truncate(v.DisplayName(), 24), v.Type().Label(), v.Flat, status, inside); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d visitors\n", len(visitors))
	return err
}

// printLimits prints the saved limits next to any pending draft value.
func printLimits(w io.Writer, e *overstay.Editor) error {
	original, draft := e.Original(), e.Draft()
	defaults := overstay.DefaultLimits()

	keys := draft.Clone()
	for k, v := range original {
		if _, ok := keys[k]; !ok {
			keys[k] = v
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TYPE\tLIMIT\tDRAFT\tDEFAULT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, t := range keys.Keys() {
		saved := duration.Format(original.For(string(t)))
		pending := "-"
		if d := draft.For(string(t)); d != original.For(string(t)) {
			pending = duration.Format(d)
		}
		def := "-"
		if v, ok := defaults[t]; ok {
			def = duration.Format(v)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Label(), saved, pending, def); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	if e.Dirty() {
		_, err := fmt.Fprintln(w, "\nUnsaved changes. Run 'gk limits save' to apply or 'gk limits discard' to drop them.")
		return err
	}
	return nil
}

// printChanges prints the draft's differences from the saved limits.
func printChanges(w io.Writer, changes []overstay.Change) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No unsaved changes.")
		return err
	}
	for _, c := range changes {
		if _, err := fmt.Fprintf(w, "%-10s %s → %s\n", c.Type.Label(), duration.Format(c.Before), duration.Format(c.After)); err != nil {
			return err
		}
	}
	return nil
}

// printScans prints the local scan history.
func printScans(w io.Writer, scans []*scanlog.Scan) error {
	if len(scans) == 0 {
		_, err := fmt.Fprintln(w, "No scans recorded.")
		return err
	}

	for _, s := range scans {
		line := fmt.Sprintf("[%s] %s", s.ScannedAt.Local().Format("2006-01-02 15:04"), s.Result)
		if s.PassID != "" {
			line += " " + s.PassID
		}
		if s.VisitorID != "" {
			line += " (visitor " + s.VisitorID + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if s.Message != "" {
			if _, err := fmt.Fprintf(w, "  %s\n", s.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// knownTypeList returns the visitor types as a comma-separated list.
func knownTypeList() string {
	names := make([]string, len(visitor.KnownTypes))
	for i, t := range visitor.KnownTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
