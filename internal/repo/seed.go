package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/finance-tracker/internal/auth"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// Seed creates the demo account and its transactions unless the account
// already exists. It returns the demo user.
func Seed(ctx context.Context, users UserRepository, transactions TransactionRepository) (models.User, error) {
	existing, err := users.GetByEmail(ctx, models.DemoUserEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, fmt.Errorf("look up demo user: %w", err)
	}

	hash, err := auth.HashPassword(models.DemoUserPassword)
	if err != nil {
		return models.User{}, fmt.Errorf("hash demo password: %w", err)
	}
	user, err := users.CreateUser(ctx, models.User{
		Name:         models.DemoUserName,
		Email:        models.DemoUserEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create demo user: %w", err)
	}

	for _, t := range models.SeedTransactions(user.ID) {
		if _, err := transactions.Create(ctx, t); err != nil {
			return models.User{}, fmt.Errorf("seed transaction %q: %w", t.Description, err)
		}
	}
	return user, nil
}
