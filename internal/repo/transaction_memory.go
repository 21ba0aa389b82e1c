package repo

import (
	"context"
	"sync"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type InMemoryTransactionRepository struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	nextID       int
}

func NewInMemoryTransactionRepository() *InMemoryTransactionRepository {
	return &InMemoryTransactionRepository{
		transactions: []models.Transaction{},
		nextID:       1,
	}
}

// ListByOwner returns the owner's transactions in insertion order.
func (r *InMemoryTransactionRepository) ListByOwner(_ context.Context, ownerID int) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Transaction{}
	for _, t := range r.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryTransactionRepository) GetByID(_ context.Context, id, ownerID int) (models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return r.transactions[i], nil
}

func (r *InMemoryTransactionRepository) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	r.transactions = append(r.transactions, t)
	return t, nil
}

func (r *InMemoryTransactionRepository) Update(_ context.Context, t models.Transaction) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(t.ID, t.OwnerID)
	if i < 0 {
		return models.Transaction{}, ErrTransactionNotFound
	}
	r.transactions[i] = t
	return t, nil
}

func (r *InMemoryTransactionRepository) Delete(_ context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return ErrTransactionNotFound
	}
	r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
	return nil
}

func (r *InMemoryTransactionRepository) indexOf(id, ownerID int) int {
	for i, t := range r.transactions {
		if t.ID == id && t.OwnerID == ownerID {
			return i
		}
	}
	return -1
}
