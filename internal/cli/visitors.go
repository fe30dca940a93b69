package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/client"
	"github.com/evcraddock/gatekeeper/internal/overstay"
	"github.com/evcraddock/gatekeeper/internal/visitor"
)

var visitorStatuses = []visitor.Status{
	visitor.StatusPending,
	visitor.StatusExpected,
	visitor.StatusCheckedIn,
	visitor.StatusCheckedOut,
	visitor.StatusRejected,
}

func newVisitorsCmd() *cobra.Command {
	var status string
	var today bool

	cmd := &cobra.Command{
		Use:   "visitors",
		Short: "List visitors",
		Long: `List the community's visitors. Visitors who are inside show how long
they have been in, marked when past their limit.

Statuses: pending, expected, checked_in, checked_out, rejected

Examples:
  gk visitors
  gk visitors --status checked_in
  gk visitors --today`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisitors(status, today)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status")
	cmd.Flags().BoolVar(&today, "today", false, "only visitors since midnight")

	return cmd
}

func runVisitors(status string, today bool) error {
	if status != "" && !validStatus(status) {
		return fmt.Errorf("invalid status: %s", status)
	}

	community, err := requireCommunity()
	if err != nil {
		return err
	}

	opts := client.ListOptions{CommunityID: community, Status: status}
	now := time.Now()
	if today {
		y, m, d := now.Date()
		opts.From = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}

	ctx := context.Background()
	c := newAPIClient()
	limits, visitors, err := fetchVisitors(ctx, c, opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(visitors)
	}
	return printVisitors(os.Stdout, visitors, limits, now)
}

func fetchVisitors(ctx context.Context, c *client.Client, opts client.ListOptions) (overstay.Limits, []*visitor.Visitor, error) {
	visitors, err := c.ListVisitors(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("listing visitors: %w", err)
	}
	limits := overstay.NewStore(c).Fetch(ctx, opts.CommunityID)
	return limits, visitors, nil
}

func validStatus(s string) bool {
	for _, v := range visitorStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}
