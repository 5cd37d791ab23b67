// Schema Generator
//
// Generates JSON Schema files for the booking calculator API types so client
// applications can validate requests and responses.
//
// Usage:
//
//	go run ./cmd/schema-gen [output-dir]
//
// Output (default directory ./schemas):
//
//	services.json
//	quotes.json
//	rules.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/kosarica/booking-calculator/internal/handlers"
	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/quote"
	"github.com/kosarica/booking-calculator/internal/rules"
	"github.com/kosarica/booking-calculator/internal/validation"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func groups() []SchemaGroup {
	return []SchemaGroup{
		{
			Name: "services",
			Types: []any{
				pricing.Service{},
				// pricingConfig variants
				pricing.FlatRate{},
				pricing.PerSqmTiered{},
				pricing.PerRoom{},
				pricing.HourlyBySize{},
				pricing.WindowBased{},
				pricing.FlatRange{},
				pricing.BulkDiscount{},
				pricing.DynamicPricing{},
				handlers.ListServicesResponse{},
			},
			Output: "services.json",
		},
		{
			Name: "quotes",
			Types: []any{
				// Request types
				quote.Request{},
				handlers.ValidatePricingRequest{},
				// Response types
				quote.Quote{},
				pricing.PriceResult{},
				validation.ObjectResult{},
				handlers.ErrorResponse{},
			},
			Output: "quotes.json",
		},
		{
			Name: "rules",
			Types: []any{
				rules.Rule{},
				rules.ApplyResult{},
				rules.HistoryEntry{},
				rules.Statistics{},
				handlers.ListRulesResponse{},
			},
			Output: "rules.json",
		},
	}
}

func main() {
	outputDir := "./schemas"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range groups() {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: false,
	}

	definitions := make(map[string]*jsonschema.Schema)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
	}
	if svc, ok := definitions["Service"]; ok {
		addPricingModel(svc)
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://booking-calculator.se/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// addPricingModel documents the pricingModel/pricingConfig pair that Service
// encodes by hand.
func addPricingModel(svc *jsonschema.Schema) {
	if svc.Properties == nil {
		return
	}
	names := make([]any, 0, len(pricing.ModelNames))
	for _, n := range pricing.ModelNames {
		names = append(names, string(n))
	}
	svc.Properties.Set("pricingModel", &jsonschema.Schema{
		Type:        "string",
		Enum:        names,
		Description: "Selects the pricing model; pricingConfig holds that model's settings",
	})
	svc.Properties.Set("pricingConfig", &jsonschema.Schema{
		Type:        "object",
		Description: "Configuration of the selected pricing model",
	})
	svc.Required = append(svc.Required, "pricingModel", "pricingConfig")
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
