package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/database/migrations"
	"github.com/shashiranjanraj/ayoo/database/seeders"
	"github.com/shashiranjanraj/ayoo/pkg/database"
	"github.com/shashiranjanraj/ayoo/pkg/migration"
)

// bootDB opens the configured database.
func bootDB(ctx context.Context) (*gorm.DB, func(), error) {
	db, err := database.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeDB, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// ayoo migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		db, closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		applied, err := migration.New(db, migrations.All()).Run(ctx)
		for _, name := range applied {
			fmt.Println("Migrated:", name)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("Nothing to migrate.")
		}
		return nil
	},
}

// ayoo migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		db, closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		reverted, err := migration.New(db, migrations.All()).Rollback(ctx)
		for _, name := range reverted {
			fmt.Println("Rolled back:", name)
		}
		if err != nil {
			return err
		}
		if len(reverted) == 0 {
			fmt.Println("Nothing to roll back.")
		}
		return nil
	},
}

// ayoo migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		db, closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		rows, err := migration.New(db, migrations.All()).Status(ctx)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("MIGRATION", "RAN", "BATCH")
		for _, s := range rows {
			ran, batch := "No", ""
			if s.Ran {
				ran, batch = "Yes", strconv.Itoa(s.Batch)
			}
			if err := table.Append([]string{s.Name, ran, batch}); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

// ayoo seed
var seedCmd = &cobra.Command{
	Use:   "seed [name...]",
	Short: "Load demo data (safe to re-run)",
	Long:  "Runs every seeder, or only the named ones: " + strings.Join(seeders.Names(), ", "),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		db, closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()
		return seeders.Run(ctx, db, args...)
	},
}
