package aggregate

import (
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type Options struct {
	Months int
	Recent int
}

func DefaultOptions() Options {
	return Options{Months: DefaultMonths, Recent: DefaultRecent}
}

type Dashboard struct {
	Summary    Summary              `json:"summary"`
	Categories []CategoryTotal      `json:"categories"`
	Monthly    []MonthTotals        `json:"monthly"`
	Recent     []models.Transaction `json:"recent"`
}

func BuildDashboard(transactions []models.Transaction, categories []models.Category, now time.Time, opts Options) Dashboard {
	return Dashboard{
		Summary:    Summarize(transactions),
		Categories: ByCategory(transactions, categories),
		Monthly:    Monthly(transactions, now, opts.Months),
		Recent:     Recent(transactions, opts.Recent),
	}
}
