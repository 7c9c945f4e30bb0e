package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier/pkg/markdown"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render markdown as an HTML fragment",
	Long:  `Render reads a markdown file (or stdin when no file or "-" is given) and prints the HTML preview fragment.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, _, err := readInput(args)
		if err != nil {
			fatal("Failed to read input", err)
		}
		fmt.Println(markdown.Render(src))
	},
}

// readInput returns the content of args[0], or stdin, and a suggested file name.
func readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), "export.md", err
	}
	data, err := os.ReadFile(args[0])
	return string(data), args[0], err
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
