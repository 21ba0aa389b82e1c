package aggregate

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// SortColumn names the field a transaction list is ordered by.
type SortColumn string

const (
	SortByDate        SortColumn = "date"
	SortByAmount      SortColumn = "amount"
	SortByCategory    SortColumn = "category"
	SortByDescription SortColumn = "description"
	SortByType        SortColumn = "type"
)

func ParseSortColumn(s string) (SortColumn, error) {
	switch c := SortColumn(strings.ToLower(strings.TrimSpace(s))); c {
	case SortByDate, SortByAmount, SortByCategory, SortByDescription, SortByType:
		return c, nil
	case "":
		return SortByDate, nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Sort returns a copy of transactions ordered by column. Equal keys keep
// their input order in either direction.
func Sort(transactions []models.Transaction, column SortColumn, ascending bool) []models.Transaction {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)

	compare := compareBy(column)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return sorted
}

func compareBy(column SortColumn) func(a, b models.Transaction) int {
	switch column {
	case SortByAmount:
		return func(a, b models.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortByCategory:
		return func(a, b models.Transaction) int { return compareText(a.Category, b.Category) }
	case SortByDescription:
		return func(a, b models.Transaction) int { return compareText(a.Description, b.Description) }
	case SortByType:
		return func(a, b models.Transaction) int { return cmp.Compare(a.Type, b.Type) }
	default:
		return func(a, b models.Transaction) int { return a.Date.Cmp(b.Date) }
	}
}

// compareText orders case-insensitively, breaking ties on the raw text.
func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
