package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nainya/metawrite/pkg/metafield"
)

var (
	transformType      string
	transformValue     string
	transformValueJSON bool
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Preview a value's wire encoding without writing",
	Long: `Coerce a value into the string encoding the Admin API requires for a
metafield type and print it. No network calls are made; useful for checking
what a write would send.`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVar(&transformType, "type", "", "metafield type, e.g. list.single_line_text_field")
	transformCmd.Flags().StringVar(&transformValue, "value", "", "value to transform")
	transformCmd.Flags().BoolVar(&transformValueJSON, "json", false, "parse --value as JSON before transforming")
	transformCmd.MarkFlagRequired("type")
}

func runTransform(cmd *cobra.Command, args []string) error {
	t, err := metafield.ParseType(transformType)
	if err != nil {
		return err
	}

	var value any = transformValue
	if transformValueJSON {
		if err := json.Unmarshal([]byte(transformValue), &value); err != nil {
			return fmt.Errorf("--value is not valid JSON: %w", err)
		}
	}

	encoded, err := metafield.Transform(value, t)
	if err != nil {
		return err
	}

	fmt.Println(encoded)
	return nil
}
