package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique or foreign key constraint.
	ErrConflict = errors.New("record conflicts with existing data")
	// ErrStaleStatus is returned when a conditional update matched no row because
	// the record is no longer in one of the expected states.
	ErrStaleStatus = errors.New("record is not in the expected state")
	// ErrCapacityExceeded is returned when a booking would overfill its date.
	ErrCapacityExceeded = errors.New("not enough seats left")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
