package repository

import (
	"context"

	"picvault/internal/domain"
)

// ImageFilter restricts image listings. Nil/empty fields match everything.
type ImageFilter struct {
	FileNameLike string
	UploaderID   *int64
	Status       *int
}

// ImageRepository defines persistence operations for image metadata rows.
type ImageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, img *domain.Image) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Image, error)
	Update(ctx context.Context, img *domain.Image) error
	// Delete removes the row permanently and reports rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter ImageFilter, pageNum, pageSize int) ([]domain.Image, domain.Page, error)
}
