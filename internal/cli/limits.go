package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/client"
	"github.com/evcraddock/gatekeeper/internal/draft"
	"github.com/evcraddock/gatekeeper/internal/duration"
	"github.com/evcraddock/gatekeeper/internal/overstay"
	"github.com/evcraddock/gatekeeper/internal/visitor"
)

func newLimitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "View and edit overstay limits",
		Long: `View and edit how long each visitor type may stay.

Edits go into a local draft that is only pushed to the community settings
by 'gk limits save'. Limits are whole minutes between 5 and 1440.

Examples:
  gk limits show
  gk limits set guest 300
  gk limits step delivery +1
  gk limits diff
  gk limits save`,
	}

	cmd.AddCommand(
		newLimitsShowCmd(),
		newLimitsSetCmd(),
		newLimitsStepCmd(),
		newLimitsPresetCmd(),
		newLimitsResetCmd(),
		newLimitsDefaultsCmd(),
		newLimitsDiffCmd(),
		newLimitsSaveCmd(),
		newLimitsDiscardCmd(),
	)

	return cmd
}

// limitsSession is an edit session for one community, resumed from the local
// draft when one exists.
type limitsSession struct {
	community string
	client    *client.Client
	db        *sql.DB
	drafts    *draft.Repository
	editor    *overstay.Editor
}

func openLimitsSession(ctx context.Context) (*limitsSession, error) {
	community, err := requireCommunity()
	if err != nil {
		return nil, err
	}

	database, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &limitsSession{
		community: community,
		client:    newAPIClient(),
		db:        database,
		drafts:    draft.NewRepository(database),
	}

	d, err := s.drafts.Get(community)
	switch {
	case err == nil:
		s.editor = d.Editor()
	case errors.Is(err, draft.ErrNotFound):
		s.editor = overstay.NewEditor(overstay.NewStore(s.client).Fetch(ctx, community))
	default:
		closeDB(database)
		return nil, err
	}

	return s, nil
}

func (s *limitsSession) close() {
	closeDB(s.db)
}

// persist stores the draft, or drops it once it matches the saved limits.
func (s *limitsSession) persist() error {
	if s.editor.Dirty() {
		return s.drafts.Put(s.community, s.editor)
	}
	return s.drafts.Delete(s.community)
}

// typeArg resolves a visitor type argument. Types outside the known set are
// accepted only when the community already has a limit for them.
func (s *limitsSession) typeArg(arg string) (visitor.Type, error) {
	t := visitor.ParseType(arg)
	if t == "" {
		return "", fmt.Errorf("visitor type is required")
	}
	if t.IsKnown() {
		return t, nil
	}
	if _, ok := s.editor.Draft()[t]; ok {
		return t, nil
	}
	if _, ok := s.editor.Original()[t]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown visitor type %q (known: %s)", arg, knownTypeList())
}

// edit runs fn against the session's editor and persists the result.
func edit(fn func(s *limitsSession) error) error {
	s, err := openLimitsSession(context.Background())
	if err != nil {
		return err
	}
	defer s.close()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(limitsView(s.editor))
	}
	return printChanges(os.Stdout, s.editor.Changes())
}

type limitsJSON struct {
	State    string            `json:"state"`
	Limits   map[string]int    `json:"limits"`
	Draft    map[string]int    `json:"draft,omitempty"`
	Changes  []overstay.Change `json:"changes,omitempty"`
	Defaults map[string]int    `json:"defaults"`
}

func limitsView(e *overstay.Editor) limitsJSON {
	v := limitsJSON{
		State:    e.State().String(),
		Limits:   e.Original().Wire(),
		Defaults: overstay.DefaultLimits().Wire(),
	}
	if e.Dirty() {
		v.Draft = e.Draft().Wire()
		v.Changes = e.Changes()
	}
	return v
}

func newLimitsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show limits and any unsaved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLimitsSession(context.Background())
			if err != nil {
				return err
			}
			defer s.close()

			if isJSON() {
				return printJSON(limitsView(s.editor))
			}
			return printLimits(os.Stdout, s.editor)
		},
	}
}

func newLimitsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <type> <minutes>",
		Short: "Set a limit in the draft",
		Long: `Set a limit in the draft. Values outside 5-1440 minutes are clamped.

Examples:
  gk limits set guest 300
  gk limits set cab_auto 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(func(s *limitsSession) error {
				t, err := s.typeArg(args[0])
				if err != nil {
					return err
				}
				if _, err := s.editor.SetText(t, args[1]); err != nil {
					return fmt.Errorf("invalid limit %q: %w", args[1], err)
				}
				return nil
			})
		},
	}
}

func newLimitsStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <type> <+n|-n>",
		Short: "Step a limit up or down",
		Long: `Move a limit by n steps. A step is 5 minutes below 1 hour, 15 minutes
below 4 hours, and 1 hour above that.

Examples:
  gk limits step delivery +1
  gk limits step staff -- -2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count: %s", args[1])
			}
			return edit(func(s *limitsSession) error {
				t, err := s.typeArg(args[0])
				if err != nil {
					return err
				}
				s.editor.Step(t, n)
				return nil
			})
		},
	}
}

func newLimitsPresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preset <type> <minutes>",
		Short: "Set a limit to a preset value",
		Long:  "Set a limit to one of the preset values: " + presetList(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mins, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid preset: %s", args[1])
			}
			return edit(func(s *limitsSession) error {
				t, err := s.typeArg(args[0])
				if err != nil {
					return err
				}
				_, err = s.editor.ApplyPreset(t, mins)
				return err
			})
		},
	}
}

func newLimitsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [type]",
		Short: "Revert draft edits",
		Long:  "Revert one type, or every type when none is given, to its saved limit.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(func(s *limitsSession) error {
				if len(args) == 0 {
					s.editor.Discard()
					return nil
				}
				t, err := s.typeArg(args[0])
				if err != nil {
					return err
				}
				s.editor.ResetField(t)
				return nil
			})
		},
	}
}

func newLimitsDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Replace the draft with the default limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(func(s *limitsSession) error {
				s.editor.ResetToDefaults()
				return nil
			})
		},
	}
}

func newLimitsDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show unsaved changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLimitsSession(context.Background())
			if err != nil {
				return err
			}
			defer s.close()

			if isJSON() {
				return printJSON(s.editor.Changes())
			}
			return printChanges(os.Stdout, s.editor.Changes())
		},
	}
}

func newLimitsSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Push the draft to the community settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLimitsSave(context.Background())
		},
	}
}

func runLimitsSave(ctx context.Context) error {
	s, err := openLimitsSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if !s.editor.Dirty() {
		fmt.Println("No unsaved changes.")
		return nil
	}

	changes := s.editor.Changes()
	if err := s.editor.Save(ctx, overstay.NewStore(s.client), s.community); err != nil {
		if errors.Is(err, overstay.ErrSaveFailed) {
			return fmt.Errorf("%w; draft kept, run 'gk limits save' to retry", err)
		}
		return err
	}

	if err := s.drafts.Delete(s.community); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(limitsView(s.editor))
	}
	fmt.Printf("✓ Saved %d change(s).\n", len(changes))
	return nil
}

func newLimitsDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the unsaved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLimitsSession(context.Background())
			if err != nil {
				return err
			}
			defer s.close()

			s.editor.Discard()
			if err := s.drafts.Delete(s.community); err != nil {
				return err
			}
			fmt.Println("Draft discarded.")
			return nil
		},
	}
}

func presetList() string {
	var out string
	for i, p := range overstay.Presets {
		if i > 0 {
			out += ", "
		}
		out += duration.Format(p)
	}
	return out
}
