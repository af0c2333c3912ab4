package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eugenenazirov/outpost-calculator/internal/calculator"
)

// runTotals selects every "id[=amount]" argument in order and writes the
// resulting material totals as a two-column table.
func runTotals(w io.Writer, resolver calculator.Resolver, args []string) error {
	sel := calculator.NewSelection(resolver)
	for _, arg := range args {
		id, amount, hasAmount := strings.Cut(arg, "=")
		id = strings.TrimSpace(id)
		if !sel.AddOrReplace(id) {
			return fmt.Errorf("unknown module %q", id)
		}
		if !hasAmount {
			continue
		}
		if err := sel.SetAmountByID(id, amount); err != nil {
			return fmt.Errorf("module %q: %w", id, err)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tAMOUNT")
	for _, line := range sel.Totals().Lines() {
		fmt.Fprintf(tw, "%s\t%d\n", line.Material, line.Quantity)
	}
	return tw.Flush()
}
