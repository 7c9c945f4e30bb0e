package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier/pkg/adapters/fs"
	"github.com/aretw0/dossier/pkg/evidence"
)

var (
	watchTarget   entityFlags
	watchPattern  string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watch monitors a drop directory and ingests every file that lands in it
as evidence for the given site or person, one file per batch.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entity := watchTarget.entity()
		vault := openVault(cmd)

		inbox, err := fs.NewInbox(fs.InboxConfig{
			Dir:      args[0],
			Pattern:  watchPattern,
			Debounce: watchDebounce,
			Logger:   slog.Default(),
		})
		if err != nil {
			fatal("Invalid inbox", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dropped, err := inbox.Watch(ctx)
		if err != nil {
			fatal("Failed to watch", err)
		}
		slog.Info("watching for evidence", "dir", args[0], "pattern", watchPattern, "entity", string(entity.Type)+"/"+entity.ID)

		for path := range dropped {
			batch, err := vault.Ingestor.Ingest(ctx, entity, []evidence.File{evidence.LocalFile(path)})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					break
				}
				// Already logged by the ingestor; keep watching.
				continue
			}
			for _, rec := range batch.Records() {
				slog.Info("evidence added", "id", rec.ID, "path", rec.FilePath, "size", rec.Size())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchTarget.register(watchCmd, false)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "*", "Glob matched against dropped file names (e.g. '*.{png,pdf}')")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Quiet period before a dropped file is ingested")
}
