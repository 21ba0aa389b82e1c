package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rogerio-castellano/finance-tracker/internal/aggregate"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printTransactions(out io.Writer, txs []models.Transaction) {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, t := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Category, t.Description, signed(t))
	}
	w.Flush()
}

func signed(t models.Transaction) string {
	if t.Type == models.Expense {
		return "-" + t.Amount.StringFixed(2)
	}
	return "+" + t.Amount.StringFixed(2)
}

func printDashboard(out io.Writer, d aggregate.Dashboard) {
	w := newTable(out)
	fmt.Fprintf(w, "Income\t%s\n", d.Summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(w, "Expenses\t%s\n", d.Summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(w, "Balance\t%s\n", d.Summary.Balance.StringFixed(2))
	fmt.Fprintf(w, "Savings rate\t%s%%\n", d.Summary.SavingsPercent().StringFixed(1))
	w.Flush()

	if len(d.Categories) > 0 {
		fmt.Fprintln(out, "\nExpenses by category")
		w = newTable(out)
		for _, c := range d.Categories {
			fmt.Fprintf(w, "%s\t%s\t%s%%\t%s\n", c.Name, c.Total.StringFixed(2), aggregate.Share(c, d.Categories).StringFixed(1), c.Color)
		}
		w.Flush()
	}

	fmt.Fprintln(out, "\nMonthly")
	w = newTable(out)
	fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE\tBALANCE")
	for _, m := range d.Monthly {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Label, m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Balance.StringFixed(2))
	}
	w.Flush()

	if len(d.Recent) > 0 {
		fmt.Fprintln(out, "\nRecent")
		printTransactions(out, d.Recent)
	}
}

func printCategories(out io.Writer, cats []models.Category) {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOLOR")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Color)
	}
	w.Flush()
}
