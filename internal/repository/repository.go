// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic: a missing row is
// reported as sql.ErrNoRows and translated by the service layer.
package repository

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
