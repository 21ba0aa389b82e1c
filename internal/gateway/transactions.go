package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

type transactionBody struct {
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        models.Date            `json:"date"`
}

func bodyOf(t models.Transaction) transactionBody {
	return transactionBody{
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
	}
}

// ListTransactions returns every transaction owned by the session user.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	err := c.do(ctx, request{
		op:         "gateway.ListTransactions",
		method:     http.MethodGet,
		path:       "/api/transactions",
		auth:       true,
		wantStatus: http.StatusOK,
		out:        &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Transaction{}
	}
	return out, nil
}

// CreateTransaction sends t without its id; the server assigns id and owner.
func (c *Client) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	var out models.Transaction
	err := c.do(ctx, request{
		op:         "gateway.CreateTransaction",
		method:     http.MethodPost,
		path:       "/api/transactions",
		body:       bodyOf(t),
		auth:       true,
		wantStatus: http.StatusCreated,
		out:        &out,
	})
	return out, err
}

// UpdateTransaction replaces the stored record with t's fields.
func (c *Client) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	var out models.Transaction
	err := c.do(ctx, request{
		op:         "gateway.UpdateTransaction",
		method:     http.MethodPut,
		path:       fmt.Sprintf("/api/transactions/%d", t.ID),
		body:       bodyOf(t),
		auth:       true,
		wantStatus: http.StatusOK,
		out:        &out,
	})
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	return c.do(ctx, request{
		op:         "gateway.DeleteTransaction",
		method:     http.MethodDelete,
		path:       fmt.Sprintf("/api/transactions/%d", id),
		auth:       true,
		wantStatus: http.StatusNoContent,
	})
}

// ImportTransactions uploads a CSV file as multipart form data. Rows the
// server rejects are listed in the result rather than failing the call.
func (c *Client) ImportTransactions(ctx context.Context, filename string, csv io.Reader) (models.ImportResult, error) {
	const op = "gateway.ImportTransactions"

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return models.ImportResult{}, fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := form.Close(); err != nil {
		return models.ImportResult{}, fmt.Errorf("%s: build form: %w", op, err)
	}

	var out models.ImportResult
	err = c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/api/transactions/import",
		raw:         &buf,
		contentType: form.FormDataContentType(),
		auth:        true,
		wantStatus:  http.StatusOK,
		out:         &out,
	})
	return out, err
}
