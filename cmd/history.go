package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dealscope/dealscope/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently performed searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		limit, _ := cmd.Flags().GetInt("limit")

		if dbPath == "" {
			dbPath = viper.GetString("db.path")
		}
		if dbPath == "" {
			return errors.New("no db path configured (set db.path or pass --db)")
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListRecent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		for _, r := range records {
			fmt.Printf("%s  %-30q %3d results  %5dms  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Term, r.ResultCount, r.DurationMS, r.Currency)
		}
		if len(records) == 0 {
			fmt.Println("No searches recorded yet.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("db", "", "Path to the search-history sqlite database")
	historyCmd.Flags().Int("limit", 20, "Maximum entries to show")
}
