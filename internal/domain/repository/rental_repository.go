package repository

import (
	"context"
	"errors"
	"time"

	"librarian/internal/domain/entity"

	"github.com/shopspring/decimal"
)

var (
	ErrRentalNotFound = errors.New("rental not found")
	// ErrOpenRentalExists is returned when an insert would give a copy a second open rental.
	ErrOpenRentalExists = errors.New("copy already has an open rental")
	// ErrRentalClosed is returned when closing a rental that is no longer open.
	ErrRentalClosed = errors.New("rental already closed")
)

// RentalRepository persists the rental ledger.
type RentalRepository interface {
	// FindByID loads the rental with client and copy->book->author.
	FindByID(ctx context.Context, id uint64) (*entity.Rental, error)
	List(ctx context.Context) ([]*entity.Rental, error)
	// HasOpenRental reports whether the copy has a rental without return date.
	// Implementations must read from the primary.
	HasOpenRental(ctx context.Context, copyID uint64) (bool, error)
	Create(ctx context.Context, rental *entity.Rental) error
	// Close sets the return date and fine only if the rental is still open.
	Close(ctx context.Context, id uint64, returnedAt time.Time, fine *decimal.Decimal) error
	Delete(ctx context.Context, id uint64) error
}
