package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier"
	"github.com/aretw0/dossier/pkg/evidence"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an evidence record and its attachment",
	Long:  `Delete asks for confirmation, then removes the evidence record and its attached file from the vault.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		confirm := promptConfirmer(os.Stdin, os.Stdout)
		if deleteYes {
			confirm = func(string) bool { return true }
		}

		vault := openVault(cmd, dossier.WithConfirmer(confirm))

		deleted, err := vault.Ingestor.Delete(context.Background(), id)
		if err != nil {
			fatal("Failed to delete evidence", err)
		}
		if !deleted {
			fmt.Println("Aborted.")
			return
		}
		fmt.Printf("Evidence deleted: %s\n", id)
	},
}

// promptConfirmer asks a y/N question; anything but y or yes declines.
func promptConfirmer(in io.Reader, out io.Writer) evidence.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
