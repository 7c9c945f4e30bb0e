package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
	"github.com/aretw0/dossier/pkg/core"
)

var (
	verbose   bool
	gitless   bool
	vaultFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Case vault for OSINT investigations",
	Long: `Dossier keeps the evidence of an investigation in a directory of Markdown
documents, versioned with Git. Files are attached to sites and persons,
and reports can be rendered, copied or downloaded.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&gitless, "gitless", false, "Write without Git commits")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (default: discovered from the working directory)")
}

// vaultRoot returns --vault or the first vault found above the working directory.
func vaultRoot() string {
	if vaultFlag != "" {
		return vaultFlag
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	root, err := dossier.FindVaultRoot(wd)
	if err != nil {
		fatal("Not a dossier vault", err)
	}
	return root
}

// openVault opens the current vault. --gitless only applies when set, so
// dossier.yaml can decide otherwise.
func openVault(cmd *cobra.Command, opts ...dossier.Option) *dossier.Vault {
	base := []dossier.Option{
		dossier.WithMustExist(true),
		dossier.WithLogger(slog.Default()),
	}
	if cmd.Flags().Changed("gitless") {
		base = append(base, dossier.WithVersioning(!gitless))
	}

	vault, err := dossier.Open(context.Background(), vaultRoot(), append(base, opts...)...)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return vault
}

// entityFlags are shared by commands that target one site or person.
type entityFlags struct {
	kind       string
	id         string
	name       string
	url        string
	confidence string
	tags       []string
}

func (f *entityFlags) register(cmd *cobra.Command, full bool) {
	cmd.Flags().StringVar(&f.kind, "type", "", "Entity type (site or person)")
	cmd.Flags().StringVar(&f.id, "id", "", "Entity ID")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("id")
	if !full {
		return
	}
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.url, "url", "", "Entity URL")
	cmd.Flags().StringVar(&f.confidence, "confidence", "", "Confidence level (confirmed, high, medium, low, suspected)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable)")
}

func (f *entityFlags) entity() core.Entity {
	kind, err := core.ParseEntityType(f.kind)
	if err != nil {
		fatal("Invalid --type", err)
	}
	confidence, err := core.ParseConfidence(f.confidence)
	if err != nil {
		fatal("Invalid --confidence", err)
	}
	e := core.Entity{
		Type:       kind,
		ID:         f.id,
		Name:       f.name,
		URL:        f.url,
		Confidence: confidence,
		Tags:       f.tags,
	}
	if err := e.Validate(); err != nil {
		fatal("Invalid entity", err)
	}
	return e
}
