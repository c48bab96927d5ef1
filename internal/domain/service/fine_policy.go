package service

import (
	"time"

	"librarian/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// FinePolicy computes the fine for a rental being closed at returnedAt
// when the caller did not supply one. A nil result records no fine.
type FinePolicy interface {
	Fine(rental *entity.Rental, returnedAt time.Time) *decimal.Decimal
}
