package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dealscope/dealscope/internal/server"
	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dealscope HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		dbPath, _ := cmd.Flags().GetString("db")
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")

		if dbPath == "" {
			dbPath = viper.GetString("db.path")
		}

		reg, err := newRegistry(proxy)
		if err != nil {
			return err
		}

		var db *storage.DB
		if dbPath != "" {
			db, err = storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
		} else {
			utils.Log.Info("no db path configured, search history disabled")
		}

		srv := server.New(reg, newEnhancer(), db,
			viper.GetString("server.username"),
			viper.GetString("server.password"))
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("db", "", "Path to the search-history sqlite database")
}
