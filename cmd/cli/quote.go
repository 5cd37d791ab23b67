package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/booking-calculator/internal/quote"
)

var (
	quoteArea      float64
	quoteRooms     int
	quoteFrequency string
	quoteZip       string
	quoteAddOns    []string
	quoteWindows   map[string]int
	quoteRut       bool
	quotePromo     string
	quoteDate      string
	quoteOutput    string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote <service-id>",
	Short: "Price a booking against the service catalog",
	Long: `Price a booking for one catalog service. The input is validated, priced with
the service's pricing model and passed through the registered pricing rules.
The output shows the breakdown, discounts, applied rules and the VAT share.`,
	Example: `  booking-calculator quote home-cleaning --area 85 --frequency biweekly
  booking-calculator quote home-cleaning --area 85 --add-on oven --add-on fridge --rut --zip 11455
  booking-calculator quote window-wash --area 60 --window standard=8 --window double=2 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Float64Var(&quoteArea, "area", 0, "Area in m² (required)")
	quoteCmd.Flags().IntVar(&quoteRooms, "rooms", 0, "Number of rooms")
	quoteCmd.Flags().StringVar(&quoteFrequency, "frequency", "", "weekly, biweekly, monthly, quarterly or yearly")
	quoteCmd.Flags().StringVar(&quoteZip, "zip", "", "Zip code")
	quoteCmd.Flags().StringArrayVar(&quoteAddOns, "add-on", nil, "Add-on id (repeatable)")
	quoteCmd.Flags().StringToIntVar(&quoteWindows, "window", nil, "Window type and count, e.g. standard=6 (repeatable)")
	quoteCmd.Flags().BoolVar(&quoteRut, "rut", false, "Apply the RUT deduction when eligible")
	quoteCmd.Flags().StringVar(&quotePromo, "promo", "", "Promo code")
	quoteCmd.Flags().StringVar(&quoteDate, "date", "", "Booking date and time (RFC3339)")
	quoteCmd.Flags().StringVar(&quoteOutput, "output", "table", "Output format: table or json")
	quoteCmd.MarkFlagRequired("area")
}

func quoteInput(cmd *cobra.Command) map[string]any {
	input := map[string]any{"area": quoteArea}
	flags := cmd.Flags()
	if flags.Changed("rooms") {
		input["rooms"] = quoteRooms
	}
	if quoteFrequency != "" {
		input["frequency"] = quoteFrequency
	}
	if quoteZip != "" {
		input["zipCode"] = quoteZip
	}
	if len(quoteAddOns) > 0 {
		addOns := make([]any, len(quoteAddOns))
		for i, a := range quoteAddOns {
			addOns[i] = a
		}
		input["addOns"] = addOns
	}
	if len(quoteWindows) > 0 {
		windows := make(map[string]any, len(quoteWindows))
		for k, v := range quoteWindows {
			windows[k] = v
		}
		input["windowCleaning"] = windows
	}
	if quoteRut {
		input["useRut"] = true
	}
	if quotePromo != "" {
		input["promoCode"] = quotePromo
	}
	if quoteDate != "" {
		input["date"] = quoteDate
	}
	return input
}

func runQuote(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	q, err := a.Quotes.Quote(context.Background(), quote.Request{ServiceID: args[0], Input: quoteInput(cmd)})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quoteOutput == "json" {
		return writeJSON(out, q)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Service:\t%s (%s)\n", q.ServiceID, q.Price.Metadata.PricingModel)
	fmt.Fprintf(w, "Quote:\t%s\n\n", q.ID)
	fmt.Fprintln(w, "STEP\tAMOUNT")
	for _, e := range q.Price.Breakdown {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, signedSEK(e.Amount))
	}
	fmt.Fprintln(w)
	for _, d := range q.Price.Discounts {
		fmt.Fprintf(w, "Discount %s:\t%s\n", d.Type, sek(d.Amount))
	}
	for _, r := range q.Rules.AppliedRules {
		fmt.Fprintf(w, "Rule %s:\t%s\n", r.Name, signedSEK(r.Adjustment))
	}
	fmt.Fprintf(w, "Total:\t%s\n", sek(q.Price.TotalPrice))
	fmt.Fprintf(w, "incl. VAT:\t%s\n", sek(q.Price.VatAmount))
	if q.Price.Metadata.FromCache {
		fmt.Fprintln(w, "(cached)")
	}
	return w.Flush()
}
