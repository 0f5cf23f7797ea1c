package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"storefront/core/output"
	"storefront/core/session"
)

var addQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.AddToCart(ctx, args[0], addQuantity); err != nil {
				return err
			}
			return renderCart(cmd, s)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove one unit of a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.RemoveFromCart(ctx, args[0]); err != nil {
				return err
			}
			return renderCart(cmd, s)
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a cart line (minimum 1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.SetCartQuantity(ctx, args[0], parseQuantity(args[0], args[1])); err != nil {
				return err
			}
			return renderCart(cmd, s)
		})
	},
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart and its totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			return renderCart(cmd, s)
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.ClearCart(ctx); err != nil {
				return err
			}
			return renderCart(cmd, s)
		})
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place a demo order for the cart contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			order, err := s.Checkout()
			if err != nil {
				return err
			}
			return render(cmd, &output.Result{Order: order})
		})
	},
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "units to add, limited to stock")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartCheckoutCmd)
}

func renderCart(cmd *cobra.Command, s *session.Session) error {
	view := s.Snapshot().Cart
	return render(cmd, &output.Result{Cart: &view})
}
