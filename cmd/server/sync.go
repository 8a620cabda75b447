package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/spf13/cobra"
)

var errSyncFailed = errors.New("sync failed")

func newSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-shot sync against the commission API",
	}

	syncCmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "Sync electoral event types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, func(engine *services.SyncEngine) (services.SyncResult, error) {
				return engine.SyncElectoralEventTypes(cmd.Context()), nil
			})
		},
	})

	var typeID int
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Sync electoral events for one event type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, func(engine *services.SyncEngine) (services.SyncResult, error) {
				return engine.SyncElectoralEventsForType(cmd.Context(), typeID)
			})
		},
	}
	eventsCmd.Flags().IntVar(&typeID, "type-id", 0, "Commission electoral event type id")
	_ = eventsCmd.MarkFlagRequired("type-id")
	syncCmd.AddCommand(eventsCmd)

	syncCmd.AddCommand(&cobra.Command{
		Use:   "full",
		Short: "Sync event types and every municipal type's events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, func(engine *services.SyncEngine) (services.SyncResult, error) {
				return engine.SyncFull(cmd.Context()), nil
			})
		},
	})

	return syncCmd
}

// runSync prints the result as JSON and fails the command when the sync did not succeed.
func runSync(cmd *cobra.Command, fn func(*services.SyncEngine) (services.SyncResult, error)) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := fn(a.engine)
	if err != nil {
		return err
	}
	return writeSyncResult(cmd.OutOrStdout(), result)
}

func writeSyncResult(w io.Writer, result services.SyncResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if !result.Success {
		return errSyncFailed
	}
	return nil
}
