package service

import (
	"errors"
	"fmt"

	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/validation"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrInvalidID         = repository.ErrInvalidID
	ErrVersionConflict   = repository.ErrVersionConflict
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidDirection  = errors.New("direction must be decrease or increase")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyUpdate       = errors.New("no valid fields to update")
)

// ValidationError todas las violaciones de reglas de campo de un alta o actualización
type ValidationError = validation.ValidationError

// ConflictError sku, barcode o slug ya usados por otro producto
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// StockError detalla un ajuste de stock rechazado
type StockError struct {
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", ErrInsufficientStock, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
