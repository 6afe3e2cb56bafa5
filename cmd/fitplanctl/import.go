package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/mongo"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

var importUserID string

var importCmd = &cobra.Command{
	Use:   "import <program.toml>",
	Short: "Create a program from a TOML definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importUserID == "" {
			return errors.New("--user is required")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer mongo.DisconnectDB(client)
		db := client.Database(cfg.Database.Name)

		content := service.NewContent(service.ContentParams{
			Repos: service.Repos{
				Tx:        mongo.NewTransactor(client, cfg.Database.Transactions),
				Programs:  mongo.NewMongoProgramRepository(db),
				Weeks:     mongo.NewMongoWeekRepository(db),
				Workouts:  mongo.NewMongoWorkoutRepository(db),
				Exercises: mongo.NewMongoExerciseRepository(db),
				Sets:      mongo.NewMongoSetRepository(db),
				Circuits:  mongo.NewMongoCircuitRepository(db),
				Purchases: mongo.NewMongoPurchaseRepository(db),
			},
		})
		program, err := service.NewLibraryService(content).ImportProgramTOML(cmd.Context(), importUserID, data)
		if err != nil {
			return err
		}

		bold := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("imported %s (%s) with %d weeks\n", bold(program.Name), program.ID, len(program.Weeks))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importUserID, "user", "u", "", "id of the profile that will own the program")
	rootCmd.AddCommand(importCmd)
}
