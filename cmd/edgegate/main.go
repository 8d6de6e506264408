package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/edgegate/edgegate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "edgegate",
	Short:   "Edge gateway serving files under signed-URL path policies",
	Long: `Edgegate is a lightweight edge node that serves static files under
path-scoped access policies. Protected prefixes require time-limited
HMAC signed URLs, optionally pinned to exact byte ranges. Policies
hot-reload from a local file or a central configuration server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		setupLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "served files directory (default: ./data, env: EDGEGATE_SERVER_DATA_DIR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
