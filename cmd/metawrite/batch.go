package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/metawrite/pkg/metafield"
)

var (
	batchProduct string
	batchFile    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Write multiple metafields in one mutation",
	Long: `Write several metafields onto one product in a single Admin API call.
The input file is a JSON array of objects with namespace, key, value, and an
optional type:

  [
    {"namespace": "custom", "key": "count", "value": 42, "type": "number_integer"},
    {"namespace": "custom", "key": "tags", "value": ["a", "b"]}
  ]

The batch is all-or-nothing: the first field that cannot be resolved or
transformed aborts it, and any user error reported by the platform rejects
the whole batch.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchProduct, "product", "", "product GID, e.g. gid://shopify/Product/123")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to the JSON fields file")
	batchCmd.MarkFlagRequired("product")
	batchCmd.MarkFlagRequired("file")
}

type batchEntry struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     any    `json:"value"`
	Type      string `json:"type"`
	ForceType bool   `json:"force_type"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(batchFile)
	if err != nil {
		return fmt.Errorf("read fields file: %w", err)
	}

	var entries []batchEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse fields file: %w", err)
	}

	fields := make([]metafield.Field, 0, len(entries))
	for _, e := range entries {
		f := metafield.Field{
			Namespace: e.Namespace,
			Key:       e.Key,
			Value:     e.Value,
			ForceType: e.ForceType,
		}
		if e.Type != "" {
			t, err := metafield.ParseType(e.Type)
			if err != nil {
				return fmt.Errorf("field %s.%s: %w", e.Namespace, e.Key, err)
			}
			f.Type = &t
		}
		fields = append(fields, f)
	}

	writer, err := newWriter()
	if err != nil {
		return err
	}

	result, err := writer.WriteBatch(context.Background(), batchProduct, fields)
	if err != nil {
		if rejected, ok := metafield.AsRejected(err); ok {
			for _, ue := range rejected.Errors {
				fmt.Printf("  user error: %s: %s\n", ue.Field, ue.Message)
			}
		}
		return err
	}

	fmt.Printf("Wrote %d metafields on %s\n", len(result.Metafields), result.OwnerID)
	for _, mf := range result.Metafields {
		fmt.Printf("  %s.%s (%s) = %s\n", mf.Namespace, mf.Key, mf.Type, mf.Value)
	}
	return nil
}
