package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rogerio-castellano/finance-tracker/internal/events"
	handler "github.com/rogerio-castellano/finance-tracker/internal/http/handlers"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

func TestListTransactionsHandler(t *testing.T) {
	env := newTestEnv()

	txs, w := listTransactions(env.router, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if len(txs) != 6 {
		t.Fatalf("expected 6 seeded transactions, got %d", len(txs))
	}
	for i, tx := range txs {
		if tx.ID != i+1 {
			t.Errorf("expected insertion order, got id %d at %d", tx.ID, i)
		}
	}
	if !txs[0].Amount.Equal(decimal.NewFromInt(2500)) || txs[0].Type != models.Income {
		t.Errorf("unexpected first row %+v", txs[0])
	}
}

func TestCreateTransactionHandler_Valid(t *testing.T) {
	env := newTestEnv()

	w := createTransaction(env.router, handler.TransactionRequest{
		Amount: decimal.RequireFromString("42.5"), Type: "expense", Category: "Food",
		Description: "Lunch", Date: "2025-01-30",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Transaction
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("expected id 7, got %d", created.ID)
	}
	if created.OwnerID != 1 {
		t.Errorf("expected the caller to own the row, got %d", created.OwnerID)
	}
	if created.Date.String() != "2025-01-30" {
		t.Errorf("unexpected date %s", created.Date)
	}

	txs, _ := listTransactions(env.router, token)
	if len(txs) != 7 || txs[6].Description != "Lunch" {
		t.Errorf("expected the new row at the end, got %d rows", len(txs))
	}
	if kinds := env.events.kinds(); len(kinds) != 1 || kinds[0] != events.TransactionCreated {
		t.Errorf("expected one created event, got %v", kinds)
	}
}

func TestCreateTransactionHandler_Invalid(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name           string
		payload        handler.TransactionRequest
		expectedFields []string
	}{
		{
			name:           "Empty body",
			payload:        handler.TransactionRequest{},
			expectedFields: []string{"amount", "type", "category", "description", "date"},
		},
		{
			name: "Negative amount",
			payload: handler.TransactionRequest{Amount: decimal.NewFromInt(-5), Type: "expense",
				Category: "Food", Description: "Refund", Date: "2025-01-02"},
			expectedFields: []string{"amount"},
		},
		{
			name: "Unknown type",
			payload: handler.TransactionRequest{Amount: decimal.NewFromInt(5), Type: "transfer",
				Category: "Food", Description: "Lunch", Date: "2025-01-02"},
			expectedFields: []string{"type"},
		},
		{
			name: "Impossible date",
			payload: handler.TransactionRequest{Amount: decimal.NewFromInt(5), Type: "income",
				Category: "Salary", Description: "Pay", Date: "2025-02-30"},
			expectedFields: []string{"date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createTransaction(env.router, tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 Bad Request, got %d", w.Code)
			}
			resp := decodeError(w)
			if resp.Message != "Invalid transaction" {
				t.Errorf("expected 'Invalid transaction', got %q", resp.Message)
			}
			fields := fieldNames(resp)
			for _, f := range tt.expectedFields {
				if !fields[f] {
					t.Errorf("expected an error for field %q, got %+v", f, resp.Errors)
				}
			}
		})
	}

	if txs, _ := listTransactions(env.router, token); len(txs) != 6 {
		t.Errorf("rejected rows must not be stored, got %d rows", len(txs))
	}
	if kinds := env.events.kinds(); len(kinds) != 0 {
		t.Errorf("rejected rows must not publish events, got %v", kinds)
	}
}

func TestUpdateTransactionHandler_PartialMerge(t *testing.T) {
	env := newTestEnv()

	w := updateTransaction(env.router, 2, map[string]any{"amount": 600})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.Transaction
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected amount 600, got %s", updated.Amount)
	}
	if updated.Description != "Grocery shopping" || updated.Category != "Food" || updated.Type != models.Expense {
		t.Errorf("fields left out of the body must keep their value, got %+v", updated)
	}
	if kinds := env.events.kinds(); len(kinds) != 1 || kinds[0] != events.TransactionUpdated {
		t.Errorf("expected one updated event, got %v", kinds)
	}
}

func TestUpdateTransactionHandler_Errors(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name          string
		id            int
		body          any
		expectCode    int
		expectMessage string
	}{
		{"Unknown id", 99, map[string]any{"amount": 1}, http.StatusNotFound, "Transaction not found"},
		{"Invalid merged row", 2, map[string]any{"type": "gift"}, http.StatusBadRequest, "Invalid transaction"},
		{"Empty description", 2, map[string]any{"description": " "}, http.StatusBadRequest, "Invalid transaction"},
		{"Broken JSON", 2, `{"amount":`, http.StatusBadRequest, "Invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := updateTransaction(env.router, tt.id, tt.body)
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			if msg := decodeError(w).Message; msg != tt.expectMessage {
				t.Errorf("expected %q, got %q", tt.expectMessage, msg)
			}
		})
	}
}

func TestDeleteTransactionHandler(t *testing.T) {
	env := newTestEnv()

	if w := deleteTransaction(env.router, 3); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 No Content, got %d", w.Code)
	}
	if w := deleteTransaction(env.router, 3); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}

	txs, _ := listTransactions(env.router, token)
	for _, tx := range txs {
		if tx.ID == 3 {
			t.Error("deleted row still listed")
		}
	}
	if kinds := env.events.kinds(); len(kinds) != 1 || kinds[0] != events.TransactionDeleted {
		t.Errorf("expected one deleted event, got %v", kinds)
	}
}

func TestTransactionsAreScopedToOwner(t *testing.T) {
	env := newTestEnv()

	reg := send(env.router, http.MethodPost, "/api/auth/register", "", handler.RegisterRequest{
		Name: "Other", Email: "other@example.com", Password: "secret1",
	})
	if reg.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", reg.Code)
	}
	var other models.AuthResult
	if err := json.NewDecoder(reg.Body).Decode(&other); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	if w := send(env.router, http.MethodPut, "/api/transactions/1", other.Token, map[string]any{"amount": 1}); w.Code != http.StatusNotFound {
		t.Errorf("update of another user's row: expected 404, got %d", w.Code)
	}
	if w := send(env.router, http.MethodDelete, "/api/transactions/1", other.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("delete of another user's row: expected 404, got %d", w.Code)
	}
	if txs, _ := listTransactions(env.router, token); len(txs) != 6 {
		t.Errorf("demo rows must be untouched, got %d", len(txs))
	}
}
