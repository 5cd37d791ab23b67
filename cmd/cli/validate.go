package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/quote"
	"github.com/kosarica/booking-calculator/internal/validation"
)

var (
	validateCustomer bool
	validateOutput   string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a pricing input or customer record",
	Long: `Validate a JSON document against the pricing input schema, or against the
customer schema with --customer. A pricing document may name a catalog service
with "serviceId" and carry the record under "input"; otherwise the whole
document is the record. Exits non-zero when the record is invalid.`,
	Example: `  booking-calculator validate ./booking.json
  booking-calculator validate ./customer.json --customer --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCustomer, "customer", false, "Validate against the customer schema")
	validateCmd.Flags().StringVar(&validateOutput, "output", "table", "Output format: table or json")
}

func runValidate(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	engine := validation.NewEngine(cfg.Validation, logger)
	var result *validation.ObjectResult
	if validateCustomer {
		result = engine.ValidateCustomerInfo(doc)
	} else {
		record, err := pricingRecord(doc)
		if err != nil {
			return err
		}
		result = engine.ValidatePricingInput(record)
	}

	out := cmd.OutOrStdout()
	if validateOutput == "json" {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printValidation(cmd, result)
	}
	return result.Err()
}

// pricingRecord resolves the optional serviceId into the service summary the
// schema expects.
func pricingRecord(doc map[string]any) (map[string]any, error) {
	input, wrapped := doc["input"].(map[string]any)
	if !wrapped {
		return doc, nil
	}
	id, _ := doc["serviceId"].(string)
	if id == "" {
		return input, nil
	}
	a, err := buildApp()
	if err != nil {
		return nil, err
	}
	var svc *pricing.Service
	if svc, err = a.Catalog.Service(id); err != nil {
		return nil, err
	}
	return quote.ValidationRecord(input, svc), nil
}

func printValidation(cmd *cobra.Command, result *validation.ObjectResult) {
	out := cmd.OutOrStdout()
	if result.IsValid {
		fmt.Fprintf(out, "valid (%d fields checked)\n", result.Summary.TotalFields)
	} else {
		fmt.Fprintf(out, "invalid: %d of %d fields failed\n", result.Summary.ErrorFields, result.Summary.TotalFields)
	}
	for _, line := range sortedMessages(result.Errors) {
		fmt.Fprintf(out, "  error    %s\n", line)
	}
	for field, msgs := range result.Warnings {
		for _, msg := range msgs {
			fmt.Fprintf(out, "  warning  %s: %s\n", field, msg)
		}
	}
}

func sortedMessages(m map[string]string) []string {
	lines := make([]string, 0, len(m))
	for field, msg := range m {
		lines = append(lines, field+": "+msg)
	}
	sort.Strings(lines)
	return lines
}
