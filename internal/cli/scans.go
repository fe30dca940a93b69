package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/scanlog"
)

func newScansCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Show recent gate scans from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScans(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", scanlog.DefaultListLimit, "number of scans to show")

	return cmd
}

func runScans(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	database, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	scans, err := scanlog.NewRepository(database).List(limit)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(scans)
	}
	return printScans(os.Stdout, scans)
}
