package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const transactionColumns = `id, amount, type, category, description, date, user_id`

func (r *PostgresTransactionRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id, ownerID int) (models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	query := `INSERT INTO transactions (amount, type, category, description, date, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, t.Amount, string(t.Type), t.Category, t.Description, t.Date, t.OwnerID, time.Now().UTC()).Scan(&t.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

func (r *PostgresTransactionRepository) Update(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	query := `UPDATE transactions SET amount = $1, type = $2, category = $3, description = $4, date = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, t.Amount, string(t.Type), t.Category, t.Description, t.Date, time.Now().UTC(), t.ID, t.OwnerID)
	if err != nil {
		return models.Transaction{}, err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func (r *PostgresTransactionRepository) Delete(ctx context.Context, id, ownerID int) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var typ string
	if err := row.Scan(&t.ID, &t.Amount, &typ, &t.Category, &t.Description, &t.Date, &t.OwnerID); err != nil {
		return models.Transaction{}, err
	}
	t.Type = models.TransactionType(typ)
	return t, nil
}
