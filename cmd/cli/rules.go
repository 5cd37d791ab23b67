package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesOutput string

// rulesCmd groups the rule registry commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the pricing rules loaded from the catalog",
}

// rulesListCmd represents the rules list command
var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in application order",
	Example: `  booking-calculator rules list
  booking-calculator rules list --catalog ./config/catalog.yaml --output json`,
	Args: cobra.NoArgs,
	RunE: runRulesList,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)

	rulesListCmd.Flags().StringVar(&rulesOutput, "output", "table", "Output format: table or json")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	list := a.Quotes.Rules().GetRules()

	out := cmd.OutOrStdout()
	if rulesOutput == "json" {
		return writeJSON(out, list)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tID\tNAME\tTYPE\tACTION\tENABLED")
	for _, r := range list {
		action := "-"
		if r.Action.Type != "" {
			action = fmt.Sprintf("%s %g", r.Action.Type, r.Action.Value)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n", r.Priority, r.ID, r.Name, r.Type, action, r.IsEnabled())
	}
	fmt.Fprintf(w, "\n%d rules\n", len(list))
	return w.Flush()
}
