package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"picvault/internal/domain"
)

// Pred is a single WHERE condition with its bind arguments.
type Pred struct {
	Expr string
	Args []any
}

// Where builds a predicate from an expression and its arguments.
func Where(expr string, args ...any) Pred {
	return Pred{Expr: expr, Args: args}
}

// table describes how to read rows of one entity: table name, column list
// and a scan function usable with both sql.Row and sql.Rows.
type table[T any] struct {
	name    string
	columns string
	scan    func(row interface{ Scan(dest ...any) error }) (T, error)
}

func whereClause(preds []Pred) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	exprs := make([]string, len(preds))
	var args []any
	for i, p := range preds {
		exprs[i] = p.Expr
		args = append(args, p.Args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// selectOne returns the first matching row, or (nil, nil) when none matches.
func selectOne[T any](ctx context.Context, db *sql.DB, t table[T], preds ...Pred) (*T, error) {
	where, args := whereClause(preds)
	row := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", t.columns, t.name, where), args...)
	v, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return &v, nil
}

// selectAll returns every matching row. No implicit limit is applied; callers
// are expected to bound result size themselves.
func selectAll[T any](ctx context.Context, db *sql.DB, t table[T], orderBy string, preds ...Pred) ([]T, error) {
	where, args := whereClause(preds)
	query := fmt.Sprintf("SELECT %s FROM %s%s", t.columns, t.name, where)
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func countWhere(ctx context.Context, db *sql.DB, name string, preds []Pred) (int, error) {
	where, args := whereClause(preds)
	var total int
	err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s%s", name, where), args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return total, nil
}

// selectPage returns one page of matching rows plus the page descriptor.
// The count and the fetch are two separate statements over live data; under
// concurrent writes total_size and the returned rows may disagree. A page
// size of zero yields an empty fetch and a zero-page descriptor.
func selectPage[T any](ctx context.Context, db *sql.DB, t table[T], pageNum, pageSize int, orderBy string, preds ...Pred) ([]T, domain.Page, error) {
	total, err := countWhere(ctx, db, t.name, preds)
	if err != nil {
		return nil, domain.Page{}, err
	}
	page := domain.NewPage(pageNum, pageSize, total)

	where, args := whereClause(preds)
	query := fmt.Sprintf("SELECT %s FROM %s%s", t.columns, t.name, where)
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, pageSize, page.Offset())

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Page{}, fmt.Errorf("select page %s: %w", t.name, err)
	}
	defer rows.Close()

	items := make([]T, 0, pageSize)
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, domain.Page{}, fmt.Errorf("scan %s: %w", t.name, err)
		}
		items = append(items, v)
	}
	return items, page, rows.Err()
}

// deleteWhere removes matching rows and reports how many were affected.
func deleteWhere(ctx context.Context, db *sql.DB, name string, preds ...Pred) (int64, error) {
	where, args := whereClause(preds)
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", name, where), args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", name, err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
