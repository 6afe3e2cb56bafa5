package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/config"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/logging"
)

var (
	configDir string
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:           "fitplanctl",
	Short:         "Maintenance commands for the FitPlan databases",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err == nil {
			log.Debugln("loaded .env")
		}
		loaded, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(logging.LoggerSetupParams{
			LogLevel:      cfg.Log.Level,
			LogFormatJSON: cfg.Log.JSON,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory holding config.yaml")
}
