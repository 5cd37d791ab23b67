package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kosarica/booking-calculator/internal/catalog"
	"github.com/kosarica/booking-calculator/internal/pricing"
)

var (
	importSheet  string
	importModel  string
	importID     string
	importName   string
	importFormat string
)

// importCmd represents the import-tiers command
var importCmd = &cobra.Command{
	Use:   "import-tiers <file.xlsx>",
	Short: "Turn a spreadsheet price table into a catalog service",
	Long: `Read an area price table from an XLSX workbook and print a catalog document
with one service using it. Columns are minArea, maxArea, price and, for
per_sqm_tiered, an optional tier type (per_sqm or flat_rate). A header row is
skipped.`,
	Example: `  booking-calculator import-tiers ./prices.xlsx --id home-cleaning --name "Hemstädning"
  booking-calculator import-tiers ./moves.xlsx --model flat_range --sheet Flytt --id move-out --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Sheet name (default is the first sheet)")
	importCmd.Flags().StringVar(&importModel, "model", string(pricing.ModelPerSqmTiered), "per_sqm_tiered or flat_range")
	importCmd.Flags().StringVar(&importID, "id", "", "Service ID (required)")
	importCmd.Flags().StringVar(&importName, "name", "", "Service name")
	importCmd.Flags().StringVar(&importFormat, "format", "yaml", "Output format: yaml or json")
	importCmd.MarkFlagRequired("id")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	model, err := catalog.ImportTiersXLSX(f, importSheet, pricing.ModelName(importModel))
	if err != nil {
		return err
	}
	logger.Info().Str("file", args[0]).Str("model", importModel).Msg("Imported price table")

	name := importName
	if name == "" {
		name = importID
	}
	doc := catalog.Document{Services: []*pricing.Service{{ID: importID, Name: name, Model: model}}}
	data, err := catalog.Encode(doc, catalog.Format(importFormat))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
