package main

import (
	"fmt"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending club database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := postgres.NewDBPool(ctx, postgres.NewDBPoolParams{
			DSN:      cfg.Postgres.DSN,
			MaxConns: 2,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		applied, err := postgres.NewMigrationManager(log.StandardLogger(), pool, postgres.Migrations).Run(ctx)
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Println(color.YellowString("schema already up to date"))
			return nil
		}
		fmt.Println(color.GreenString("applied %d migrations", applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
