package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ali-derogar/bujo/internal/journal/migrate"
	"github.com/ali-derogar/bujo/internal/journal/syncmeta"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database, migration and sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if _, err := openStore(ctx); err != nil {
			return err
		}
		database, err := manager.Conn()
		if err != nil {
			return err
		}

		version, err := database.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render("Database"))
		fmt.Printf("  path    %s\n", database.Path())
		fmt.Printf("  schema  v%d\n", version)
		fmt.Println()

		engine := migrate.NewEngine(database, logger)
		scans, err := engine.Status(ctx)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Stores"))
		for _, scan := range scans {
			line := fmt.Sprintf("  %-16s %5d records", scan.Store, scan.Total)
			if scan.NeedsMigration > 0 {
				line += warnStyle.Render(fmt.Sprintf("  (%d need migration)", scan.NeedsMigration))
			}
			fmt.Println(line)
		}
		fmt.Println()

		fmt.Println(headerStyle.Render("Sync"))
		if cfg.SyncBaseURL == "" {
			fmt.Println(dimStyle.Render("  not configured"))
			return nil
		}
		fmt.Printf("  backend  %s\n", cfg.SyncBaseURL)

		meta := syncmeta.NewStore(cfg.SyncMetaPath)
		last, err := meta.LastSyncAt(userOrDefault())
		if err != nil {
			return err
		}
		if last == nil {
			fmt.Println(dimStyle.Render("  never synced"))
		} else {
			fmt.Printf("  last sync  %s\n", okStyle.Render(last.Local().Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

func userOrDefault() string {
	if strings.TrimSpace(flagUser) == "" {
		return "default"
	}
	return flagUser
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
