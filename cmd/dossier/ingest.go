package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
	"github.com/aretw0/dossier/pkg/evidence"
)

var (
	ingestTarget     entityFlags
	ingestIDStrategy string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Attach files as evidence to a site or person",
	Long: `Ingest reads each file in order, stores it under Attachments/ and creates
one evidence record per file. The first failure stops the batch; files
already ingested are kept.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entity := ingestTarget.entity()

		var opts []dossier.Option
		if ingestIDStrategy != "" {
			opts = append(opts, dossier.WithIDStrategy(ingestIDStrategy))
		}
		vault := openVault(cmd, opts...)

		files := make([]evidence.File, len(args))
		for i, path := range args {
			files[i] = evidence.LocalFile(path)
		}

		batch, err := vault.Ingestor.Ingest(context.Background(), entity, files)
		for _, rec := range batch.Records() {
			fmt.Printf("added %s %s (%s)\n", rec.ID, rec.FilePath, rec.Size())
		}
		if err != nil {
			var berr *evidence.BatchError
			if errors.As(err, &berr) {
				fmt.Fprintf(os.Stderr, "Stopped at %s: %d of %d files ingested\n", berr.FileName, berr.Created, len(files))
			}
			fatal("Failed to ingest", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestTarget.register(ingestCmd, false)
	ingestCmd.Flags().StringVar(&ingestIDStrategy, "id-strategy", "", "Evidence ID strategy (random or content)")
}
