package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nainya/metawrite/pkg/metafield"
)

var (
	writeProduct   string
	writeNamespace string
	writeKey       string
	writeValue     string
	writeType      string
	writeForceType bool
	writeValueJSON bool
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a single product metafield",
	Long: `Write one metafield onto a product. The target type is resolved from the
schema definition or the existing value; pass --type to override and
--force-type to skip resolution entirely.`,
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeProduct, "product", "", "product GID, e.g. gid://shopify/Product/123")
	writeCmd.Flags().StringVar(&writeNamespace, "namespace", "custom", "metafield namespace")
	writeCmd.Flags().StringVar(&writeKey, "key", "", "metafield key")
	writeCmd.Flags().StringVar(&writeValue, "value", "", "value to write")
	writeCmd.Flags().StringVar(&writeType, "type", "", "explicit metafield type, e.g. number_integer")
	writeCmd.Flags().BoolVar(&writeForceType, "force-type", false, "use --type even when a definition exists")
	writeCmd.Flags().BoolVar(&writeValueJSON, "json", false, "parse --value as JSON before transforming")
	writeCmd.MarkFlagRequired("product")
	writeCmd.MarkFlagRequired("key")
}

func runWrite(cmd *cobra.Command, args []string) error {
	field := metafield.Field{
		Namespace: writeNamespace,
		Key:       writeKey,
		Value:     writeValue,
		ForceType: writeForceType,
	}

	if writeValueJSON {
		var parsed any
		if err := json.Unmarshal([]byte(writeValue), &parsed); err != nil {
			return fmt.Errorf("--value is not valid JSON: %w", err)
		}
		field.Value = parsed
	}

	if writeType != "" {
		t, err := metafield.ParseType(writeType)
		if err != nil {
			return err
		}
		field.Type = &t
	}

	writer, err := newWriter()
	if err != nil {
		return err
	}

	result, err := writer.Write(context.Background(), writeProduct, field)
	if err != nil {
		if rejected, ok := metafield.AsRejected(err); ok {
			for _, ue := range rejected.Errors {
				fmt.Printf("  user error: %s: %s\n", ue.Field, ue.Message)
			}
		}
		return err
	}

	fmt.Printf("Wrote %s.%s on %s\n", writeNamespace, writeKey, result.OwnerID)
	for _, mf := range result.Metafields {
		fmt.Printf("  %s.%s (%s) = %s\n", mf.Namespace, mf.Key, mf.Type, mf.Value)
	}
	return nil
}
