package repository

import (
	"context"
	"time"

	"metrodoc/internal/model"
)

// Account is a stored user with its password hash. The hash never leaves the service layer.
type Account struct {
	User         model.User
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines data access for accounts.
type UserRepository interface {
	// Create inserts the account. A taken email is reported as model.ErrDuplicateID.
	Create(ctx context.Context, a *Account) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
}
