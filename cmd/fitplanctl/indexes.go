package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/mongo"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer mongo.DisconnectDB(client)

		if err := mongo.EnsureIndexes(cmd.Context(), client.Database(cfg.Database.Name)); err != nil {
			return err
		}
		fmt.Println(color.GreenString("indexes ready on %s", cfg.Database.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
