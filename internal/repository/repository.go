package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateSKU is returned when a variant SKU is already taken.
	ErrDuplicateSKU = errors.New("duplicate sku")
	// ErrInsufficientStock is returned when a conditional stock decrement matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateAWB is returned when an AWB number is already assigned to another order.
	ErrDuplicateAWB = errors.New("duplicate awb number")
)

// StockError identifies the variant whose conditional decrement failed.
// It matches ErrInsufficientStock with errors.Is.
type StockError struct {
	VariantID int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d", e.VariantID)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation on constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}
