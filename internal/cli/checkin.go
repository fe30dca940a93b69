package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/scanlog"
	"github.com/evcraddock/gatekeeper/internal/visitor"
)

func newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <pass>",
		Short: "Check a visitor in from a gate pass",
		Long: `Check a visitor in from a scanned gate pass. The pass may be the raw
QR payload (JSON or a pass link) or the bare pass code. Every scan is
recorded locally; see 'gk scans'.

Examples:
  gk checkin 3f1c2a9e-4b5d-4e6f-8a7b-9c0d1e2f3a4b
  gk checkin '{"passId":"PASS-1042","communityId":"c-1"}'
  gk checkin 'https://gate.example.com/p?pass=PASS-1042'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin(args[0])
		},
	}
}

func runCheckin(payload string) error {
	database, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)
	scans := scanlog.NewRepository(database)

	pass, err := visitor.ParsePass(payload)
	if err != nil {
		record(scans, scanlog.Scan{Payload: payload, Result: scanlog.ResultInvalid, Message: err.Error()})
		return err
	}

	if pass.CommunityID == "" {
		community, err := requireCommunity()
		if err != nil {
			return err
		}
		pass.CommunityID = community
	}

	scan := scanlog.Scan{CommunityID: pass.CommunityID, Payload: payload, PassID: pass.PassID}

	c := newAPIClient()
	v, err := c.CheckIn(context.Background(), pass)
	if err != nil {
		scan.Result = scanlog.ResultRejected
		scan.Message = err.Error()
		record(scans, scan)
		return fmt.Errorf("check-in rejected: %w", err)
	}

	scan.Result = scanlog.ResultAdmitted
	scan.VisitorID = v.ID
	record(scans, scan)

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("✓ Checked in %s (%s)\n", v.DisplayName(), v.Type().Label())
	if v.Flat != "" {
		fmt.Printf("  Flat: %s\n", v.Flat)
	}
	return nil
}

// record stores a scan. Failing to log a scan never fails the check-in.
func record(scans *scanlog.Repository, s scanlog.Scan) {
	if _, err := scans.Record(s); err != nil {
		slog.Warn("recording scan", "pass", s.PassID, "error", err)
	}
}
