package repo

import (
	"context"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// UserRepository stores accounts. Emails are unique, compared case-insensitively.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
}
