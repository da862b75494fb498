package repository

import (
	"context"

	"github.com/spec-kit/member-portal/internal/domain"
)

// UserRepository defines persistence access for registered members.
// GetByEmail matches the stored email exactly, case-sensitively.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
