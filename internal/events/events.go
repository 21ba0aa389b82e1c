// Package events announces transaction changes to other services.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
)

// Event is the JSON message published for every accepted change. Transaction
// is nil for deletions.
type Event struct {
	Kind          Kind                `json:"kind"`
	UserID        int                 `json:"userId"`
	TransactionID int                 `json:"transactionId"`
	Transaction   *models.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

func NewEvent(kind Kind, userID int, t models.Transaction) Event {
	e := Event{
		Kind:          kind,
		UserID:        userID,
		TransactionID: t.ID,
		Timestamp:     time.Now().UTC(),
	}
	if kind != TransactionDeleted {
		e.Transaction = &t
	}
	return e
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
