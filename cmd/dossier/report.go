package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
	"github.com/aretw0/dossier/pkg/markdown"
	"github.com/aretw0/dossier/pkg/report"
)

var (
	reportTarget   entityFlags
	reportHTML     bool
	reportCopy     bool
	reportDownload string
	reportSave     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the markdown report of a site or person",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entity := reportTarget.entity()
		vault := openVault(cmd)
		ctx := context.Background()

		records, err := vault.Records.List(ctx, evidence.Filter{
			"entity_type": string(entity.Type),
			"entity_id":   entity.ID,
		})
		if err != nil {
			fatal("Failed to list evidence", err)
		}

		res, err := report.Build(entity, records, time.Now())
		if err != nil {
			fatal("Failed to build report", err)
		}

		if reportSave {
			id := strings.TrimSuffix(res.FilePath, ".md")
			msg := dossier.FormatChangeReason(dossier.CommitTypeDocs, "report", "update "+res.FileName, "")
			saveCtx := context.WithValue(ctx, core.ChangeReasonKey, msg)
			doc := core.Document{ID: id, Content: res.Markdown}
			if err := vault.Repo.Save(saveCtx, doc); err != nil {
				fatal("Failed to save report", err)
			}
			slog.Info("report saved", "path", res.FilePath)
		}

		if reportHTML {
			fmt.Println(markdown.Render(res.Markdown))
			return
		}
		deliver(res, reportCopy, reportDownload)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportTarget.register(reportCmd, true)
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "Print the rendered HTML fragment")
	reportCmd.Flags().BoolVar(&reportCopy, "copy", false, "Copy the markdown to the clipboard")
	reportCmd.Flags().StringVar(&reportDownload, "download", "", "Write the markdown into this directory")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Store the report in the vault under Reports/")
}
