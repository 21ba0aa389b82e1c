// Package filter selects the transactions that satisfy a set of criteria.
package filter

import (
	"strings"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// TypeAll disables the type constraint, as does an empty Type.
const TypeAll = "all"

// Criteria constrains a transaction list. Every field is optional and the
// dimensions are combined with AND. Search alone matches description OR category.
type Criteria struct {
	From      *models.Date
	To        *models.Date
	Type      string
	Category  string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    string
}

func (c Criteria) IsEmpty() bool {
	return c.From == nil && c.To == nil && (c.Type == "" || c.Type == TypeAll) &&
		c.Category == "" && c.MinAmount == nil && c.MaxAmount == nil && c.Search == ""
}

func (c Criteria) Validate() error {
	if c.Type != "" && c.Type != TypeAll && !models.TransactionType(c.Type).Valid() {
		return models.ValidationErrors{{Field: "type", Description: "Type must be income, expense or all"}}
	}
	return nil
}

// Clone returns a copy that shares no pointers with c.
func (c Criteria) Clone() Criteria {
	out := c
	if c.From != nil {
		from := *c.From
		out.From = &from
	}
	if c.To != nil {
		to := *c.To
		out.To = &to
	}
	if c.MinAmount != nil {
		min := *c.MinAmount
		out.MinAmount = &min
	}
	if c.MaxAmount != nil {
		max := *c.MaxAmount
		out.MaxAmount = &max
	}
	return out
}

func (c Criteria) Matches(t models.Transaction) bool {
	if c.From != nil && t.Date.Cmp(*c.From) < 0 {
		return false
	}
	if c.To != nil && t.Date.Cmp(*c.To) > 0 {
		return false
	}
	if c.Type != "" && c.Type != TypeAll && string(t.Type) != c.Type {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.MinAmount != nil && t.Amount.LessThan(*c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && t.Amount.GreaterThan(*c.MaxAmount) {
		return false
	}
	if c.Search != "" {
		term := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.Category), term) {
			return false
		}
	}
	return true
}

// Apply returns the transactions that match c, in input order. The result
// never aliases the input slice.
func Apply(transactions []models.Transaction, c Criteria) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
