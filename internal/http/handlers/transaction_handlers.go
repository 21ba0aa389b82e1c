package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/finance-tracker/internal/events"
	mw "github.com/rogerio-castellano/finance-tracker/internal/http/middleware"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/rogerio-castellano/finance-tracker/internal/repo"
)

// ListTransactions godoc
// @Summary List the caller's transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/transactions [get]
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.ListByOwner(r.Context(), mw.GetUserID(r))
	if err != nil {
		h.serverError(w, r, applog.OpList, err)
		return
	}
	h.respond(w, r, http.StatusOK, txs)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transaction body TransactionRequest true "Transaction to add"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/transactions [post]
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid input")
		return
	}

	tx, err := req.Draft().Transaction()
	if err != nil {
		h.validationFailed(w, r, err)
		return
	}
	tx.OwnerID = mw.GetUserID(r)

	created, err := h.transactions.Create(r.Context(), tx)
	if err != nil {
		h.serverError(w, r, applog.OpCreate, err)
		return
	}

	h.publish(r, events.NewEvent(events.TransactionCreated, created.OwnerID, created))
	h.respond(w, r, http.StatusCreated, created)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Fields left out of the body keep their stored value.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param transaction body models.TransactionPatch true "Fields to change"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Router /api/transactions/{id} [put]
func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(r)
	if !ok {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}

	var patch models.TransactionPatch
	if err := readJSON(w, r, &patch); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid input")
		return
	}

	owner := mw.GetUserID(r)
	current, err := h.transactions.GetByID(r.Context(), id, owner)
	if errors.Is(err, repo.ErrTransactionNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.serverError(w, r, applog.OpUpdate, err)
		return
	}

	merged, err := patch.Apply(current)
	if err != nil {
		h.validationFailed(w, r, err)
		return
	}

	updated, err := h.transactions.Update(r.Context(), merged)
	if errors.Is(err, repo.ErrTransactionNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.serverError(w, r, applog.OpUpdate, err)
		return
	}

	h.publish(r, events.NewEvent(events.TransactionUpdated, owner, updated))
	h.respond(w, r, http.StatusOK, updated)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Router /api/transactions/{id} [delete]
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(r)
	if !ok {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}

	owner := mw.GetUserID(r)
	err := h.transactions.Delete(r.Context(), id, owner)
	if errors.Is(err, repo.ErrTransactionNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.serverError(w, r, applog.OpDelete, err)
		return
	}

	h.publish(r, events.NewEvent(events.TransactionDeleted, owner, models.Transaction{ID: id}))
	w.WriteHeader(http.StatusNoContent)
}

func transactionID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

func (h *Handlers) validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		h.fail(w, r, http.StatusBadRequest, "Invalid transaction", verrs...)
		return
	}
	h.fail(w, r, http.StatusBadRequest, err.Error())
}

// publish logs failures; the change is stored either way.
func (h *Handlers) publish(r *http.Request, e events.Event) {
	if err := h.events.Publish(r.Context(), e); err != nil {
		h.log(r).Warn("event not published",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEvent, string(e.Kind),
			applog.FieldTransactionID, e.TransactionID,
			applog.FieldError, err.Error(),
		)
	}
}
