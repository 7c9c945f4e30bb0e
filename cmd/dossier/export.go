package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier/pkg/markdown"
)

var (
	exportCopy     bool
	exportDownload string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Copy or download raw markdown",
	Long: `Export hands the markdown over unchanged: --copy puts it on the clipboard
(printing it for manual selection when no clipboard is available) and
--download writes it into a directory. Without flags it is printed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, name, err := readInput(args)
		if err != nil {
			fatal("Failed to read input", err)
		}
		deliver(markdown.ExportResult{Markdown: src, FileName: filepath.Base(name)}, exportCopy, exportDownload)
	},
}

// deliver copies, downloads or prints an export result.
func deliver(res markdown.ExportResult, copyIt bool, downloadDir string) {
	exporter := markdown.NewExporter(markdown.WithExportLogger(slog.Default()))

	if copyIt {
		if err := exporter.Copy(context.Background(), markdown.Raw(res)); err != nil {
			fatal("Failed to copy", err)
		}
		fmt.Fprintln(os.Stderr, "Copied!")
	}
	if downloadDir != "" {
		path, err := exporter.Download(res, downloadDir)
		if err != nil {
			fatal("Failed to download", err)
		}
		fmt.Fprintln(os.Stderr, "Saved", path)
	}
	if !copyIt && downloadDir == "" {
		fmt.Print(markdown.Raw(res))
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy to the clipboard")
	exportCmd.Flags().StringVar(&exportDownload, "download", "", "Write into this directory")
}
