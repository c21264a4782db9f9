package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/planwise/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planwise",
		Short: "PlanWise schedule API server",
		Long:  `PlanWise is a personal task and schedule tracker with reminders, day agendas, and calendar views.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
