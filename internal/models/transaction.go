package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, the same shape the web client sends.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid transaction type %q: must be income or expense", s)
	}
	return t, nil
}

// Transaction is a single income or expense owned by one user.
type Transaction struct {
	ID          int             `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
	OwnerID     int             `json:"userId"`
}

// Validate checks the fields a stored transaction must always satisfy.
func (t Transaction) Validate() error {
	errs := ValidationErrors{}
	if !t.Amount.IsPositive() {
		errs = errs.Add("amount", "Amount must be greater than zero")
	}
	if !t.Type.Valid() {
		errs = errs.Add("type", "Type must be income or expense")
	}
	if strings.TrimSpace(t.Category) == "" {
		errs = errs.Add("category", "Category is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		errs = errs.Add("description", "Description is required")
	}
	if t.Date.IsZero() {
		errs = errs.Add("date", "Date is required")
	}
	return errs.OrNil()
}

// TransactionDraft is a transaction the server has not seen yet. Date is kept
// as text so that a malformed value is reported as a validation failure.
type TransactionDraft struct {
	Amount      decimal.Decimal
	Type        TransactionType
	Category    string
	Description string
	Date        string
}

// Transaction validates the draft and converts it into an unsaved transaction.
func (d TransactionDraft) Transaction() (Transaction, error) {
	errs := ValidationErrors{}
	date, err := ParseDate(d.Date)
	if err != nil {
		errs = errs.Add("date", "Date must be a valid YYYY-MM-DD date")
	}

	t := Transaction{
		Amount:      d.Amount,
		Type:        d.Type,
		Category:    d.Category,
		Description: d.Description,
		Date:        date,
	}
	if verr, ok := t.Validate().(ValidationErrors); ok {
		for _, fe := range verr {
			if fe.Field == "date" && errs.Has("date") {
				continue
			}
			errs = append(errs, fe)
		}
	}
	if len(errs) > 0 {
		return Transaction{}, errs
	}
	return t, nil
}

// TransactionPatch holds the fields of a partial update. Nil fields keep
// their previous value.
type TransactionPatch struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Type == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Apply merges the patch into t and validates the result. Identity and
// ownership are never changed by a patch.
func (p TransactionPatch) Apply(t Transaction) (Transaction, error) {
	merged := t
	if p.Amount != nil {
		merged.Amount = *p.Amount
	}
	if p.Type != nil {
		merged.Type = *p.Type
	}
	if p.Category != nil {
		merged.Category = *p.Category
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Date != nil {
		date, err := ParseDate(*p.Date)
		if err != nil {
			return Transaction{}, ValidationErrors{{Field: "date", Description: "Date must be a valid YYYY-MM-DD date"}}
		}
		merged.Date = date
	}
	if err := merged.Validate(); err != nil {
		return Transaction{}, err
	}
	return merged, nil
}

type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationErrors lists every field that failed validation.
type ValidationErrors []FieldError

func (v ValidationErrors) Add(field, description string) ValidationErrors {
	return append(v, FieldError{Field: field, Description: description})
}

func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil for an empty list so callers can return it as an error.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields flattens the list into a field to description map.
func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, fe := range v {
		fields[fe.Field] = fe.Description
	}
	return fields
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Description)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
