// Package cmd provides the CLI commands for storefront.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/adapters/storage"
	"storefront/core/builder"
	"storefront/core/cart"
	"storefront/core/catalog"
	"storefront/core/output"
	"storefront/core/session"
	"storefront/core/ui"
	"storefront/internal/config"
	"storefront/internal/errors"
	"storefront/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	noColor      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Shop for PC hardware from the terminal",
	Long: `storefront manages a hardware shopping cart, a wishlist and peripheral
picks, and generates PC builds that fit a tier or a budget.

State is kept locally (file, redis or postgres) between runs.

Examples:
  storefront products list --category graphics-cards --sort price-low
  storefront cart add 3 --quantity 2
  storefront build budget 1200
  storefront cart checkout`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var appErr *errors.Error
		if !errors.As(err, &appErr) || !appErr.UserVisible() {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	logging.Sync()
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storefront/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(newSelectionCmd(wishlistSpec))
	rootCmd.AddCommand(newSelectionCmd(peripheralsSpec))
	rootCmd.AddCommand(newSelectionCmd(marksSpec))
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if outputFormat == "" {
		outputFormat = cfg.Output.DefaultFormat
	}
	if cfg.Output.NoColor {
		noColor = true
	}

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openSession wires storage, catalog and build engine from the active configuration.
// Notices are written to stderr so stdout stays machine readable.
func openSession(ctx context.Context, cmd *cobra.Command) (*session.Session, error) {
	cfg := config.Get()

	cat, err := catalog.LoadFile(cfg.Builder.CatalogFile)
	if err != nil {
		return nil, err
	}
	templates, err := builder.LoadTemplates(cfg.Builder.TemplatesFile, cfg.Builder.PerformanceCeiling)
	if err != nil {
		return nil, err
	}
	lookup, ok := catalog.NewLookup(cfg.Builder.Lookup, cat)
	if !ok {
		return nil, errors.Newf(errors.TypeConfig, "unknown component lookup %q (supported: near-budget, inventory)", cfg.Builder.Lookup)
	}
	engine := builder.NewEngine(templates, lookup, builder.WithPerformanceCeiling(cfg.Builder.PerformanceCeiling))

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, errors.Storage("failed to open storage", err)
	}

	notices := ui.NewWriter(cmd.ErrOrStderr(), noColor)
	s, err := session.Open(ctx, store, session.Options{
		Pricing: cart.Pricing{
			ShippingFlat: cfg.Pricing.ShippingFlat,
			TaxRate:      cfg.Pricing.TaxRate,
		},
		Catalog:  cat,
		Builder:  engine,
		Notifier: session.NotifierFunc(func(n session.Notice) { printNotice(notices, n) }),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// withSession opens a session, runs fn and closes the session
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Warn("failed to close session", zap.Error(err))
		}
	}()
	return fn(ctx, s)
}

func printNotice(w *ui.Writer, n session.Notice) {
	switch n.Level {
	case session.LevelError:
		w.Error("%s", n.Message)
	case session.LevelSuccess:
		w.Success("%s", n.Message)
	default:
		w.Info("%s", n.Message)
	}
}

func render(cmd *cobra.Command, result *output.Result) error {
	f, err := output.NewFormatter(output.Format(outputFormat), noColor)
	if err != nil {
		return errors.Input(err.Error())
	}
	result.Currency = config.Get().Pricing.Currency
	return f.Render(cmd.OutOrStdout(), result)
}

// parseQuantity reads a quantity argument. Non-numeric input counts as 1.
func parseQuantity(id, raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		logging.Debug("clamping quantity", zap.Error(errors.InvalidQuantity(id, 0)), zap.String("raw", raw))
		return 1
	}
	return n
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront version %s\n", Version)
	},
}

// statusCmd summarizes the cart and selections
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the cart and selections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			snap := s.Snapshot()
			return render(cmd, &output.Result{Summary: &snap})
		})
	},
}
