package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dealscope/dealscope/pkg/currency"
	"github.com/dealscope/dealscope/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search second-hand marketplaces and print ranked results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.TrimSpace(args[0])
		location, _ := cmd.Flags().GetString("location")
		target, _ := cmd.Flags().GetString("currency")
		srcList, _ := cmd.Flags().GetString("sources")
		pages, _ := cmd.Flags().GetInt("pages")
		asJSON, _ := cmd.Flags().GetBool("json")
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")

		if target == "" {
			target = viper.GetString("currency.default")
		}
		target = strings.ToUpper(target)
		if !currency.Supported(target) {
			return fmt.Errorf("unsupported currency: %s", target)
		}
		if pages <= 0 {
			pages = viper.GetInt("search.max_pages")
		}

		reg, err := newRegistry(proxy)
		if err != nil {
			return err
		}

		opts := search.Options{MaxPages: pages}
		if srcList != "" {
			opts.Sources = strings.Split(srcList, ",")
		}

		results, err := search.Perform(cmd.Context(), term, location, target, reg, newEnhancer(), opts)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		for _, r := range results {
			fmt.Printf("%.2f  %-10s %-60s %s\n", r.Score, r.Price, truncate(r.Title, 60), r.Link)
		}
		if len(results) == 0 {
			fmt.Println("No results.")
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("location", "L", "", "Location to search around")
	searchCmd.Flags().StringP("currency", "c", "", "Display currency: GBP, USD or EUR (default from config)")
	searchCmd.Flags().StringP("sources", "s", "", "Comma-separated source allow-list (default: all)")
	searchCmd.Flags().IntP("pages", "p", 0, "Result pages to fetch per source and term")
	searchCmd.Flags().Bool("json", false, "Print results as JSON")
}
