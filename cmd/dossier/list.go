package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dossier/pkg/evidence"
)

var (
	listJSON   bool
	listType   string
	listEntity string
	listExt    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List evidence records",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		vault := openVault(cmd)

		filter := evidence.Filter{}
		if listType != "" {
			filter["entity_type"] = listType
		}
		if listEntity != "" {
			filter["entity_id"] = listEntity
		}
		if listExt != "" {
			filter["file_type"] = listExt
		}

		records, err := vault.Records.List(context.Background(), filter)
		if err != nil {
			fatal("Failed to list evidence", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(records); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, rec := range records {
			fmt.Printf("%s\t%s/%s\t%s\t%s\t%s\n", rec.ID, rec.EntityType, rec.EntityID, rec.FileName, rec.Size(), rec.CapturedAt)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by entity type")
	listCmd.Flags().StringVar(&listEntity, "id", "", "Filter by entity ID")
	listCmd.Flags().StringVar(&listExt, "ext", "", "Filter by file extension")
}
