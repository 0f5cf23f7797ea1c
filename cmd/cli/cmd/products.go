package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/core/catalog"
	"storefront/core/output"
	"storefront/internal/config"
	"storefront/internal/errors"
)

var (
	productCategories  []string
	productBrands      []string
	productMinPrice    string
	productMaxPrice    string
	productSort        string
	productPeripherals bool
)

// productsCmd represents the products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the product catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with optional filters",
	Long: `List catalog products.

Examples:
  storefront products list --category processors,graphics-cards
  storefront products list --brand amd --max 300 --sort price-low
  storefront products list --peripherals`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the catalog categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(config.Get().Builder.CatalogFile)
		if err != nil {
			return err
		}
		for _, c := range cat.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	productsListCmd.Flags().StringSliceVar(&productCategories, "category", nil, "only show these categories")
	productsListCmd.Flags().StringSliceVar(&productBrands, "brand", nil, "only show these brands (case-insensitive)")
	productsListCmd.Flags().StringVar(&productMinPrice, "min", "", "minimum price")
	productsListCmd.Flags().StringVar(&productMaxPrice, "max", "", "maximum price")
	productsListCmd.Flags().StringVar(&productSort, "sort", "featured", "sort order (featured, price-low, price-high, newest)")
	productsListCmd.Flags().BoolVar(&productPeripherals, "peripherals", false, "only show peripherals")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsCategoriesCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(config.Get().Builder.CatalogFile)
	if err != nil {
		return err
	}

	order, ok := catalog.ParseSortOrder(productSort)
	if !ok {
		return errors.Newf(errors.TypeInput, "unknown sort order %q", productSort)
	}
	minPrice, err := parsePriceFlag("min", productMinPrice)
	if err != nil {
		return err
	}
	maxPrice, err := parsePriceFlag("max", productMaxPrice)
	if err != nil {
		return err
	}

	categories := productCategories
	if productPeripherals {
		categories = lo.Filter(cat.Categories(), func(c string, _ int) bool {
			return catalog.IsPeripheral(c) && (len(productCategories) == 0 || lo.Contains(productCategories, c))
		})
		if len(categories) == 0 {
			return render(cmd, &output.Result{Products: []*catalog.Product{}})
		}
	}

	products := cat.Find(catalog.Query{
		Categories: categories,
		Brands:     productBrands,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       order,
	})
	return render(cmd, &output.Result{Products: products})
}

func parsePriceFlag(name, raw string) (mo.Option[decimal.Decimal], error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mo.None[decimal.Decimal](), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return mo.None[decimal.Decimal](), errors.Newf(errors.TypeInput, "invalid --%s price %q", name, raw)
	}
	return mo.Some(d), nil
}
