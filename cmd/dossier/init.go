package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a dossier vault",
	Long:  `Initialize a new vault in the given directory (default: current directory). Unless --gitless is set, this runs 'git init'.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		if len(args) == 1 {
			path = args[0]
		}

		_, err = dossier.Init(path,
			dossier.WithAutoInit(true),
			dossier.WithVersioning(!gitless),
			dossier.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize vault", err)
		}

		fmt.Println("Initialized empty dossier vault in", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
