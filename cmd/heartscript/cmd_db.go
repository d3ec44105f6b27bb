package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/heartscript/database/seeders"
	"github.com/shashiranjanraj/heartscript/internal/server"
	"github.com/shashiranjanraj/heartscript/pkg/database"
	"github.com/shashiranjanraj/heartscript/pkg/migration"
)

// withDB opens the configured database for one command.
func withDB(fn func(db *gorm.DB) error) error {
	db, err := server.OpenDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	return fn(db)
}

// heartscript migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations...")
			return migration.New(db).WithOutput(cmd.OutOrStdout()).Run()
		})
	},
}

// heartscript migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch...")
			return migration.New(db).WithOutput(cmd.OutOrStdout()).Rollback()
		})
	},
}

// heartscript migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db).WithOutput(cmd.OutOrStdout()).Status()
		})
	},
}

// heartscript seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders...")
			return seeders.RunAll(db, cmd.OutOrStdout())
		})
	},
}
