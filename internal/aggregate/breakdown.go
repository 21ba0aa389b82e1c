package aggregate

import (
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
}

// ByCategory sums expenses per category name. Groups come out in the order
// their first transaction appears. Colors are looked up in the catalogue by
// exact name, falling back to models.FallbackColor.
func ByCategory(transactions []models.Transaction, categories []models.Category) []CategoryTotal {
	out := []CategoryTotal{}
	index := map[string]int{}

	for _, t := range transactions {
		if t.Type != models.Expense {
			continue
		}
		if i, ok := index[t.Category]; ok {
			out[i].Total = out[i].Total.Add(t.Amount)
			continue
		}
		color := models.FallbackColor
		if c, ok := models.FindCategory(categories, t.Category); ok {
			color = c.Color
		}
		index[t.Category] = len(out)
		out = append(out, CategoryTotal{Name: t.Category, Total: t.Amount, Color: color})
	}
	return out
}

// Share is the percentage of the overall expense total held by one group.
func Share(group CategoryTotal, all []CategoryTotal) decimal.Decimal {
	total := decimal.Zero
	for _, g := range all {
		total = total.Add(g.Total)
	}
	return Percent(group.Total, total)
}
