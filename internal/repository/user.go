package repository

import (
	"context"
	"time"

	"picvault/internal/domain"
)

// UserRepository defines persistence operations for User entities. Lookups
// return (nil, nil) when no row matches.
type UserRepository interface {
	Init(ctx context.Context) error
	// Create inserts the user. A non-zero user.ID is honored (the first
	// account is pinned to id 1); otherwise the id is assigned.
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUserName(ctx context.Context, name string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	// Update overwrites every mutable column of the stored row.
	Update(ctx context.Context, user *domain.User) error
	// SetCurrentToken replaces the stored session credential; loginAt, when
	// non-nil, also stamps last_login_time.
	SetCurrentToken(ctx context.Context, id int64, token string, loginAt *time.Time) error
	// List returns one page of users ordered by id descending, optionally
	// filtered by a username substring.
	List(ctx context.Context, nameLike string, pageNum, pageSize int) ([]domain.User, domain.Page, error)
}
