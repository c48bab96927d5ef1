package usecase

import (
	"context"

	"librarian/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// CreateRentalInput opens a rental. Dates are YYYY-MM-DD or RFC3339.
type CreateRentalInput struct {
	ClientCPF  string
	CopyID     uint64
	RentalDate string
	DueDate    string
}

// FinishRentalInput closes a rental. A nil FineValue defers to the fine policy.
type FinishRentalInput struct {
	FineValue *decimal.Decimal
}

// RentalUsecase manages the rental ledger. A copy never has more than one open rental.
type RentalUsecase interface {
	CreateRental(ctx context.Context, input *CreateRentalInput) (*entity.Rental, error)
	ListRentals(ctx context.Context) ([]*entity.Rental, error)
	GetRental(ctx context.Context, id string) (*entity.Rental, error)
	FinishRental(ctx context.Context, id string, input *FinishRentalInput) (*entity.Rental, error)
	DeleteRental(ctx context.Context, id string) error
}
