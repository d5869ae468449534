package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	operator_id INTEGER NOT NULL,
	operator_name TEXT NOT NULL DEFAULT '',
	system_id TEXT NOT NULL DEFAULT '',
	event_type TEXT NOT NULL DEFAULT '',
	object_type TEXT NOT NULL DEFAULT '',
	object_id TEXT NOT NULL DEFAULT '',
	object_name TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_operator ON audit_logs(operator_id);
CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_logs(event_type);
`

// AuditRepository persists append-only audit entries. Rows are never updated
// or deleted through this type.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &AuditRepository{db: db}
}

var auditTable = table[domain.AuditEntry]{
	name: "audit_logs",
	columns: "id, operator_id, operator_name, system_id, event_type, " +
		"object_type, object_id, object_name, ip_address, note, created_at",
	scan: scanAuditEntry,
}

func (r *AuditRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAuditTable); err != nil {
		return fmt.Errorf("create audit_logs table: %w", err)
	}
	return nil
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_logs (id, operator_id, operator_name, system_id, event_type, object_type, object_id, object_name, ip_address, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OperatorID, entry.OperatorName, entry.SystemID,
		entry.EventType, entry.ObjectType, entry.ObjectID, entry.ObjectName,
		entry.IPAddress, entry.Note, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter repository.AuditFilter, pageNum, pageSize int) ([]domain.AuditEntry, domain.Page, error) {
	var preds []Pred
	if filter.OperatorID != nil {
		preds = append(preds, Where("operator_id = ?", *filter.OperatorID))
	}
	if filter.EventType != "" {
		preds = append(preds, Where("event_type = ?", filter.EventType))
	}
	if filter.SystemID != "" {
		preds = append(preds, Where("system_id = ?", filter.SystemID))
	}
	return selectPage(ctx, r.db, auditTable, pageNum, pageSize, "created_at DESC", preds...)
}

func scanAuditEntry(row interface{ Scan(dest ...any) error }) (domain.AuditEntry, error) {
	var e domain.AuditEntry
	if err := row.Scan(
		&e.ID,
		&e.OperatorID,
		&e.OperatorName,
		&e.SystemID,
		&e.EventType,
		&e.ObjectType,
		&e.ObjectID,
		&e.ObjectName,
		&e.IPAddress,
		&e.Note,
		&e.CreatedAt,
	); err != nil {
		return domain.AuditEntry{}, err
	}
	return e, nil
}
