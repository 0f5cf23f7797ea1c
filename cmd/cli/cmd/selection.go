package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"storefront/core/output"
	"storefront/core/selection"
	"storefront/core/session"
)

// selectionSpec describes one selection-set command tree
type selectionSpec struct {
	use    string
	short  string
	title  string
	set    func(*session.Session) *selection.Set
	toggle func(context.Context, *session.Session, string) (bool, error)
}

var wishlistSpec = selectionSpec{
	use:   "wishlist",
	short: "Manage the wishlist",
	title: "Wishlist",
	set:   (*session.Session).Wishlist,
	toggle: func(ctx context.Context, s *session.Session, id string) (bool, error) {
		return s.ToggleWishlist(ctx, id)
	},
}

var peripheralsSpec = selectionSpec{
	use:   "peripherals",
	short: "Pick peripherals to go with a build",
	title: "Selected Peripherals",
	set:   (*session.Session).Peripherals,
	toggle: func(ctx context.Context, s *session.Session, id string) (bool, error) {
		return s.TogglePeripheral(ctx, id)
	},
}

var marksSpec = selectionSpec{
	use:   "marks",
	short: "Mark parts for the PC builder",
	title: "PC Builder Parts",
	set:   (*session.Session).BuildMarks,
	toggle: func(ctx context.Context, s *session.Session, id string) (bool, error) {
		return s.ToggleBuildMark(ctx, id)
	},
}

func newSelectionCmd(spec selectionSpec) *cobra.Command {
	root := &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <product-id>...",
		Short: "Add or remove products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				for _, id := range args {
					if _, err := spec.toggle(ctx, s, id); err != nil {
						return err
					}
				}
				return renderSelection(cmd, spec, s)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the selected products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				return renderSelection(cmd, spec, s)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				if err := s.ClearSelection(ctx, spec.set(s)); err != nil {
					return err
				}
				return renderSelection(cmd, spec, s)
			})
		},
	}

	root.AddCommand(toggle, list, clearCmd)
	return root
}

func renderSelection(cmd *cobra.Command, spec selectionSpec, s *session.Session) error {
	set := spec.set(s)
	result := &output.SelectionResult{
		Name:  spec.title,
		Total: set.Total(),
	}
	for id, snap := range set.All() {
		result.Entries = append(result.Entries, selection.Entry{ID: id, Snapshot: snap})
	}
	return render(cmd, &output.Result{Selection: result})
}
