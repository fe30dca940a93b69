package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <visitor-id>",
		Short: "Check a visitor out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(args[0])
		},
	}
}

func runCheckout(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("visitor ID is required")
	}

	c := newAPIClient()
	v, err := c.CheckOut(context.Background(), id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("✓ Checked out %s\n", v.DisplayName())
	return nil
}
