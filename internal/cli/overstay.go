package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/gatekeeper/internal/client"
	"github.com/evcraddock/gatekeeper/internal/email"
	"github.com/evcraddock/gatekeeper/internal/overstay"
	"github.com/evcraddock/gatekeeper/internal/report"
	"github.com/evcraddock/gatekeeper/internal/visitor"
)

type overstayOptions struct {
	all   bool
	watch bool
	xlsx  string
	mail  []string
}

func newOverstayCmd() *cobra.Command {
	var opts overstayOptions

	cmd := &cobra.Command{
		Use:   "overstay",
		Short: "Show visitors who have stayed past their limit",
		Long: `Show visitors who are still inside past the time allowed for their type.

Severity is graded by how far past the limit a visitor is:
  !   Overstay           less than 1.5x the limit over
  !!  Long overstay      at least 1.5x the limit over
  ✗   Critical overstay  at least 3x the limit over

Examples:
  gk overstay
  gk overstay --all --watch
  gk overstay --xlsx overstays.xlsx
  gk overstay --watch --mail security@example.com

Mail alerts need GK_SMTP_HOST and GK_SMTP_FROM (plus GK_SMTP_PORT,
GK_SMTP_USER and GK_SMTP_PASS as required). With --watch, a visitor is
only mailed about once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverstay(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "show everyone inside, not just overstays")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-evaluate every minute until interrupted")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "export the board to an Excel file")
	cmd.Flags().StringSliceVar(&opts.mail, "mail", nil, "mail new overstays to these addresses")

	return cmd
}

// board is the JSON shape of the overstay command.
type board struct {
	CommunityID string                `json:"communityId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Limits      map[string]int        `json:"limits"`
	Summary     overstay.Summary      `json:"summary"`
	Visitors    []overstay.Evaluation `json:"visitors"`
}

func runOverstay(opts overstayOptions) error {
	community, err := requireCommunity()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var alerts *alerter
	if len(opts.mail) > 0 {
		cfg := getSMTPConfig()
		if !cfg.IsConfigured() {
			return fmt.Errorf("SMTP not configured (set GK_SMTP_HOST and GK_SMTP_FROM)")
		}
		alerts = newAlerter(community, opts.mail, func(to []string, subject, body string) error {
			return email.Send(cfg, to, subject, body)
		})
	}

	c := newAPIClient()
	limits, visitors, err := fetchBoard(ctx, c, community)
	if err != nil {
		return err
	}

	render := func(now time.Time) {
		evals := overstay.EvaluateAll(visitors, limits, now)
		if err := renderBoard(community, limits, evals, opts.all, now); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if alerts != nil {
			if err := alerts.notify(evals, now); err != nil {
				slog.Error("mailing overstay alert", "error", err)
			}
		}
	}

	if opts.xlsx != "" {
		now := time.Now()
		evals := overstay.EvaluateAll(visitors, limits, now)
		if err := report.SaveFile(opts.xlsx, evals, now); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d visitors to %s\n", len(evals), opts.xlsx)
	}

	if !opts.watch {
		render(time.Now())
		return nil
	}

	overstay.Tick(ctx, overstay.RefreshInterval, time.Now, render)
	return nil
}

// fetchBoard loads the community's limits and visitors concurrently. A
// limits failure falls back to the defaults; a visitors failure is fatal.
func fetchBoard(ctx context.Context, c *client.Client, community string) (overstay.Limits, []*visitor.Visitor, error) {
	loader := overstay.NewLoader(overstay.NewStore(c))

	var limits overstay.Limits
	var visitors []*visitor.Visitor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limits, _ = loader.Load(gctx, community)
		return nil
	})
	g.Go(func() error {
		var err error
		// Not filtered by status: a check-in time alone counts as inside.
		visitors, err = c.ListVisitors(gctx, client.ListOptions{CommunityID: community})
		if err != nil {
			return fmt.Errorf("listing visitors: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return limits, visitors, nil
}

// alerter mails overstay reports, once per newly overstaying visitor.
type alerter struct {
	community string
	to        []string
	send      func(to []string, subject, body string) error
	notified  map[string]bool
}

func newAlerter(community string, to []string, send func(to []string, subject, body string) error) *alerter {
	return &alerter{community: community, to: to, send: send, notified: make(map[string]bool)}
}

// notify sends a report when some visitor has started overstaying since the
// last report. A failed send is retried on the next call.
func (a *alerter) notify(evals []overstay.Evaluation, now time.Time) error {
	var fresh []string
	for _, e := range evals {
		if e.Overstaying && e.Visitor != nil && !a.notified[e.Visitor.ID] {
			fresh = append(fresh, e.Visitor.ID)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	subject := email.OverstaySubject(a.community, overstay.Summarize(evals))
	if err := a.send(a.to, subject, email.FormatOverstay(a.community, evals, now)); err != nil {
		return err
	}
	for _, id := range fresh {
		a.notified[id] = true
	}
	return nil
}

func renderBoard(community string, limits overstay.Limits, evals []overstay.Evaluation, all bool, now time.Time) error {
	if isJSON() {
		shown := evals
		if !all {
			shown = make([]overstay.Evaluation, 0, len(evals))
			for _, e := range evals {
				if e.Overstaying {
					shown = append(shown, e)
				}
			}
		}
		return printJSON(board{
			CommunityID: community,
			GeneratedAt: now.UTC(),
			Limits:      limits.Wire(),
			Summary:     overstay.Summarize(evals),
			Visitors:    shown,
		})
	}

	if err := printEvaluations(os.Stdout, evals, all); err != nil {
		return err
	}
	return printSummary(os.Stdout, overstay.Summarize(evals), now)
}
