package repository

import (
	"context"

	"picvault/internal/domain"
)

// AuditFilter restricts audit log listings.
type AuditFilter struct {
	OperatorID *int64
	EventType  string
	SystemID   string
}

// AuditRepository is an append-only sink for audit entries plus the
// peripheral paged listing used by the admin UI.
type AuditRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter, pageNum, pageSize int) ([]domain.AuditEntry, domain.Page, error)
}
