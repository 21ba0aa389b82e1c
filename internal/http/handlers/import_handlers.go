package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/finance-tracker/internal/events"
	mw "github.com/rogerio-castellano/finance-tracker/internal/http/middleware"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

const maxImportSize = 1 << 20

var importColumns = []string{"date", "type", "category", "description", "amount"}

type csvRow struct {
	line  int
	draft models.TransactionDraft
	err   error
}

// parseCSV reads a header line naming every import column, in any order and
// any case, followed by one transaction per line.
func parseCSV(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}
	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("invalid CSV header: missing column %q", col)
		}
	}

	var rows []csvRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{line: line}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[index["amount"]]))
		if err != nil {
			row.err = fmt.Errorf("invalid amount %q", record[index["amount"]])
		}
		row.draft = models.TransactionDraft{
			Amount:      amount,
			Type:        models.TransactionType(strings.ToLower(strings.TrimSpace(record[index["type"]]))),
			Category:    strings.TrimSpace(record[index["category"]]),
			Description: strings.TrimSpace(record[index["description"]]),
			Date:        strings.TrimSpace(record[index["date"]]),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowMessage(err error) string {
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fe.Description
	}
	return strings.Join(msgs, "; ")
}

// ImportTransactions godoc
// @Summary Import transactions from CSV
// @Description The file needs a header with date, type, category, description and amount columns. Valid rows are stored; the others are reported by row number.
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} ErrorResponse "Invalid file"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/transactions/import [post]
func (h *Handlers) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	rows, err := parseCSV(file)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	owner := mw.GetUserID(r)
	result := models.ImportResult{
		Transactions: []models.Transaction{},
		Errors:       []models.ImportRowError{},
	}
	for _, row := range rows {
		if row.err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: row.line, Message: row.err.Error()})
			continue
		}
		tx, err := row.draft.Transaction()
		if err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: row.line, Message: rowMessage(err)})
			continue
		}
		tx.OwnerID = owner

		created, err := h.transactions.Create(r.Context(), tx)
		if err != nil {
			h.log(r).Error("import row not stored",
				applog.FieldOperation, applog.OpImport,
				applog.FieldError, err.Error(),
			)
			result.Errors = append(result.Errors, models.ImportRowError{Row: row.line, Message: "could not be stored"})
			continue
		}
		h.publish(r, events.NewEvent(events.TransactionCreated, owner, created))
		result.Transactions = append(result.Transactions, created)
	}
	result.Imported = len(result.Transactions)

	h.log(r).Info("transactions imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, result.Imported,
		"rejected", len(result.Errors),
	)
	h.respond(w, r, http.StatusOK, result)
}
