// Package repository defines persistence contracts for the domain aggregates.
package repository

import "errors"

var (
	// ErrNotFound is returned by updates/deletes that matched no row. Lookups
	// report absence with a nil record instead.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)
