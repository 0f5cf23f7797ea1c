package cmd

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/core/builder"
	"storefront/core/output"
	"storefront/core/session"
	"storefront/internal/errors"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate PC builds",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var buildTierCmd = &cobra.Command{
	Use:   "tier <name>",
	Short: "Generate a build from a predefined tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			build, err := s.GenerateTierBuild(args[0])
			if err != nil {
				return err
			}
			return renderBuild(cmd, s, build)
		})
	},
}

var buildBudgetCmd = &cobra.Command{
	Use:   "budget <amount>",
	Short: "Generate a build that fits a budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, err := decimal.NewFromString(args[0])
		if err != nil {
			return errors.Input("budget must be a number: " + args[0])
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			build, err := s.GenerateBudgetBuild(budget)
			if err != nil {
				return err
			}
			return renderBuild(cmd, s, build)
		})
	},
}

var buildTiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the predefined tiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			var tiers []*builder.Template
			for _, name := range s.Tiers() {
				tpl, err := s.Template(name)
				if err != nil {
					return err
				}
				tiers = append(tiers, tpl)
			}
			return render(cmd, &output.Result{Tiers: tiers})
		})
	},
}

func init() {
	buildCmd.AddCommand(buildTierCmd)
	buildCmd.AddCommand(buildBudgetCmd)
	buildCmd.AddCommand(buildTiersCmd)
}

func renderBuild(cmd *cobra.Command, s *session.Session, build *builder.SelectedBuild) error {
	return render(cmd, &output.Result{Build: &output.BuildResult{
		SelectedBuild:   build,
		GrandTotal:      s.GrandTotal(),
		WithPeripherals: s.BuildWithPeripherals(),
	}})
}
