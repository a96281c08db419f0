// bujo is the command-line front end of the journal data layer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ali-derogar/bujo/internal/journal/config"
	"github.com/ali-derogar/bujo/internal/journal/db"
	"github.com/ali-derogar/bujo/internal/journal/store"
)

var (
	flagDir  string
	flagUser string

	cfg     config.Config
	logger  *zap.SugaredLogger
	manager *db.Manager
)

var rootCmd = &cobra.Command{
	Use:   "bujo",
	Short: "Offline-first bullet journal data layer",
	Long: `bujo keeps your tasks, expenses, journals, wellness entries, goals and
notes in a local database, migrates old single-user data onto named
profiles, and syncs with a backend when one is configured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagDir)
		if err != nil {
			return err
		}
		logger, err = config.NewLogger(cfg)
		if err != nil {
			return err
		}
		manager = db.NewManager(cfg.DatabasePath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if manager != nil {
			manager.Close()
		}
		if logger != nil {
			logger.Sync()
		}
	},
}

// openStore initializes the database and returns the repository layer.
func openStore(ctx context.Context) (*store.Store, error) {
	if err := manager.Initialize(ctx); err != nil {
		return nil, err
	}
	database, err := manager.Conn()
	if err != nil {
		return nil, err
	}
	return store.New(database, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "config/data directory (default ~/.bujo)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "profile to act as (default \"default\")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
