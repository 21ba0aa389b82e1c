package repo

import (
	"context"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// TransactionRepository is scoped by owner: a transaction that belongs to
// someone else behaves exactly like a missing one.
type TransactionRepository interface {
	ListByOwner(ctx context.Context, ownerID int) ([]models.Transaction, error)
	GetByID(ctx context.Context, id, ownerID int) (models.Transaction, error)
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	Update(ctx context.Context, t models.Transaction) (models.Transaction, error)
	Delete(ctx context.Context, id, ownerID int) error
}
