package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Demo account created by the in-memory backend.
const (
	DemoUserName     = "Demo User"
	DemoUserEmail    = "demo@example.com"
	DemoUserPassword = "password123"
)

// SeedTransactions returns the demo data set for ownerID. IDs are assigned
// 1 through 6 in the order listed.
func SeedTransactions(ownerID int) []Transaction {
	rows := []struct {
		amount      int64
		typ         TransactionType
		category    string
		description string
		day         int
	}{
		{2500, Income, "Salary", "Monthly salary", 1},
		{500, Expense, "Food", "Grocery shopping", 3},
		{200, Expense, "Transport", "Gas", 5},
		{100, Expense, "Entertainment", "Movie tickets", 10},
		{150, Expense, "Shopping", "Clothes", 15},
		{300, Income, "Other Income", "Freelance work", 20},
	}

	out := make([]Transaction, len(rows))
	for i, r := range rows {
		out[i] = Transaction{
			ID:          i + 1,
			Amount:      decimal.NewFromInt(r.amount),
			Type:        r.typ,
			Category:    r.category,
			Description: r.description,
			Date:        NewDate(2025, time.January, r.day),
			OwnerID:     ownerID,
		}
	}
	return out
}
