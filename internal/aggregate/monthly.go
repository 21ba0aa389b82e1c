package aggregate

import (
	"sort"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultMonths is the length of the trailing window shown on the dashboard.
const DefaultMonths = 6

type MonthTotals struct {
	Label   string          `json:"name"`
	Start   models.Date     `json:"start"`
	End     models.Date     `json:"end"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type monthKey struct {
	year  int
	month time.Month
}

// Monthly buckets transactions into the n calendar months ending with the
// month of now, oldest first. Every month is present even when empty.
func Monthly(transactions []models.Transaction, now time.Time, n int) []MonthTotals {
	if n <= 0 {
		return []MonthTotals{}
	}

	y, m, _ := now.Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	out := make([]MonthTotals, n)
	index := make(map[monthKey]int, n)
	for i := range out {
		start := current.AddDate(0, i-(n-1), 0)
		end := start.AddDate(0, 1, -1)
		out[i] = MonthTotals{
			Label:   start.Format("Jan 2006"),
			Start:   models.DateOf(start),
			End:     models.DateOf(end),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		index[monthKey{start.Year(), start.Month()}] = i
	}

	for _, t := range transactions {
		i, ok := index[monthKey{t.Date.Year(), t.Date.Month()}]
		if !ok {
			continue
		}
		switch t.Type {
		case models.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		case models.Expense:
			out[i].Expense = out[i].Expense.Add(t.Amount)
		}
	}

	for i := range out {
		out[i].Balance = out[i].Income.Sub(out[i].Expense)
	}
	return out
}

// DefaultRecent is how many transactions the dashboard lists.
const DefaultRecent = 5

// Recent returns up to n transactions, newest date first. Transactions on the
// same date keep their input order.
func Recent(transactions []models.Transaction, n int) []models.Transaction {
	if n <= 0 {
		return []models.Transaction{}
	}
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Cmp(sorted[j].Date) > 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
