package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ali-derogar/bujo/internal/journal/sync"
	"github.com/ali-derogar/bujo/internal/journal/syncmeta"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync local changes with the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.SyncBaseURL == "" {
			return fmt.Errorf("no sync backend configured; set sync_base_url in config.yaml or BUJO_SYNC_BASE_URL")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		client := sync.NewHTTPClient(cfg.SyncBaseURL, cfg.SyncToken)
		meta := syncmeta.NewStore(cfg.SyncMetaPath)
		orch := sync.NewOrchestrator(st, client, meta, logger)

		result := orch.Sync(ctx, userOrDefault(), func(phase string) {
			switch phase {
			case sync.PhaseLoading:
				fmt.Println("Collecting changes...")
			case sync.PhaseSaving:
				fmt.Println("Applying changes...")
			}
		})

		if !result.Success {
			if result.TokenExpired {
				return fmt.Errorf("%s", result.Message)
			}
			if result.Retryable {
				return fmt.Errorf("%s: %v", result.Message, result.Err)
			}
			if result.Err != nil {
				return fmt.Errorf("%s: %v", result.Message, result.Err)
			}
			return fmt.Errorf("%s", result.Message)
		}

		up, down := 0, 0
		for _, n := range result.Stats.Uploaded {
			up += n
		}
		for _, n := range result.Stats.Downloaded {
			down += n
		}
		fmt.Printf("Sync complete: %d uploaded, %d downloaded, %d conflicts resolved.\n",
			up, down, result.Stats.ConflictsResolved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
