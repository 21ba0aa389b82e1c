// Package aggregate derives dashboard figures from a transaction list.
// Every function is pure and sums with exact decimal arithmetic.
package aggregate

import (
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	// SavingsRate is Balance/TotalIncome, or zero without income.
	SavingsRate decimal.Decimal `json:"savingsRate"`
}

func Summarize(transactions []models.Transaction) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		SavingsRate:  decimal.Zero,
	}
	for _, t := range transactions {
		switch t.Type {
		case models.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case models.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	if s.TotalIncome.IsPositive() {
		s.SavingsRate = s.Balance.Div(s.TotalIncome)
	}
	return s
}

// SavingsPercent is the savings rate as a percentage rounded to two places.
func (s Summary) SavingsPercent() decimal.Decimal {
	return s.SavingsRate.Mul(hundred).Round(2)
}

// Percent returns part as a percentage of whole, rounded to two places.
// A zero whole yields zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(2)
}
