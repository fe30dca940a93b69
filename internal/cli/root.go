// Package cli defines the cobra command tree for gk.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/client"
	"github.com/evcraddock/gatekeeper/internal/db"
	"github.com/evcraddock/gatekeeper/internal/logging"
)

var (
	flagFormat    string
	flagDB        string
	flagCommunity string
	flagVerbose   bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gk",
		Short:         "Gate desk tools for a gated community",
		Long:          "A tool for the community gate desk. Check visitors in and out, watch for visitors who stay past their allowed time, and manage the per-type overstay limits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(".env"); err != nil {
				return err
			}
			logging.Setup(flagVerbose || isDevMode())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/gk/gk.db)")
	root.PersistentFlags().StringVar(&flagCommunity, "community", "", "community ID (default: from GK_COMMUNITY_ID or config)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log requests and debug output to stderr")

	root.AddCommand(
		newOverstayCmd(),
		newVisitorsCmd(),
		newLimitsCmd(),
		newCheckinCmd(),
		newCheckoutCmd(),
		newScansCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the community backend.
func newAPIClient() *client.Client {
	c := client.New(getServerURL(), getAPIKey())
	logging.RequestLogger(c.Resty())
	return c
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// requireCommunity returns the community ID or an error telling the user
// how to set one.
func requireCommunity() (string, error) {
	id := getCommunityID()
	if id == "" {
		return "", fmt.Errorf("no community configured (use --community, GK_COMMUNITY_ID, or 'gk login --community')")
	}
	return id, nil
}

// closeDB closes the database, logging any error.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		slog.Warn("closing database", "error", err)
	}
}
