package main

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats amounts the Swedish way: 1 234,50 kr.
var printer = message.NewPrinter(language.Swedish)

func sek(amount float64) string {
	return printer.Sprintf("%.2f kr", amount)
}

func signedSEK(amount float64) string {
	if amount > 0 {
		return "+" + sek(amount)
	}
	return sek(amount)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
