package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dossier",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dossier version %s\n", strings.TrimSpace(dossier.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
