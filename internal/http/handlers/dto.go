package handlers

import (
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name" example:"Demo User"`
	Email    string `json:"email" example:"demo@example.com"`
	Password string `json:"password" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"demo@example.com"`
	Password string `json:"password" example:"password123"`
}

// TransactionRequest is the create body. Identity and ownership come from
// the server.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"500"`
	Type        string          `json:"type" example:"expense"`
	Category    string          `json:"category" example:"Food"`
	Description string          `json:"description" example:"Grocery shopping"`
	Date        string          `json:"date" example:"2025-01-03"`
}

func (r TransactionRequest) Draft() models.TransactionDraft {
	return models.TransactionDraft{
		Amount:      r.Amount,
		Type:        models.TransactionType(r.Type),
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date,
	}
}

type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp"`
}
