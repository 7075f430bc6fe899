package port

import (
	"context"
	"time"

	"github.com/yakubikk/railway-registry/internal/core/domain"
)

// UserRepository exposes persistence behavior for the user registry.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
