package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ali-derogar/bujo/internal/journal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move legacy single-user records onto the default profile",
	Long: `Scan every store for records written before profiles existed and
rewrite them as belonging to the "default" profile. Safe to run more
than once; a migrated database is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if _, err := openStore(ctx); err != nil {
			return err
		}
		database, err := manager.Conn()
		if err != nil {
			return err
		}

		engine := migrate.NewEngine(database, logger)

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			needed, err := engine.CheckMigrationNeeded(ctx)
			if err != nil {
				return err
			}
			if !needed {
				fmt.Println("Nothing to migrate.")
				return nil
			}
			scans, err := engine.Status(ctx)
			if err != nil {
				return err
			}
			for _, scan := range scans {
				if scan.NeedsMigration > 0 {
					fmt.Printf("%-16s %d of %d records need migration\n",
						scan.Store, scan.NeedsMigration, scan.Total)
				}
			}
			return nil
		}

		report, err := engine.MigrateAll(ctx)
		if err != nil {
			return err
		}

		for _, result := range report.Results {
			if result.MigratedRecords == 0 && len(result.Errors) == 0 {
				continue
			}
			fmt.Printf("%-16s migrated %d of %d\n",
				result.Store, result.MigratedRecords, result.TotalRecords)
			for _, msg := range result.Errors {
				fmt.Printf("  ! %s\n", msg)
			}
		}
		fmt.Printf("Done: %d records migrated.\n", report.TotalMigrated)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "report what would be migrated without changing anything")
	rootCmd.AddCommand(migrateCmd)
}
