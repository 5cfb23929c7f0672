package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-records/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the interface for user-related database operations.
// Implementations enforce email uniqueness with a unique index and report
// violations as ErrDuplicateEmail; missing rows are reported as ErrNotFound.
type UserRepository interface {
	// List returns every user, newest first.
	List(ctx context.Context) ([]entity.User, error)
	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update persists name, email and image URL and refreshes UpdatedAt.
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
