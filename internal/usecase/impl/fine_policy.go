package impl

import (
	"strings"
	"time"

	"librarian/config"
	"librarian/internal/domain/entity"
	"librarian/internal/domain/service"
	"librarian/internal/errors"

	"github.com/shopspring/decimal"
)

// noFinePolicy never charges; closing without a fine_value records none.
type noFinePolicy struct{}

func (noFinePolicy) Fine(*entity.Rental, time.Time) *decimal.Decimal {
	return nil
}

// perDayFinePolicy charges a flat rate per whole overdue day.
type perDayFinePolicy struct {
	rate decimal.Decimal
}

func (p perDayFinePolicy) Fine(rental *entity.Rental, returnedAt time.Time) *decimal.Decimal {
	days := rental.DaysOverdue(returnedAt)
	if days == 0 {
		return nil
	}

	fine := p.rate.Mul(decimal.NewFromInt(int64(days))).Round(2)

	return &fine
}

// NewFinePolicy reads rental.finePerDay. Empty or zero disables automatic fines.
func NewFinePolicy(cfg *config.Config) (service.FinePolicy, error) {
	if cfg.Rental == nil || strings.TrimSpace(cfg.Rental.FinePerDay) == "" {
		return noFinePolicy{}, nil
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(cfg.Rental.FinePerDay))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rental.finePerDay %q", cfg.Rental.FinePerDay)
	}
	if rate.IsNegative() {
		return nil, errors.Errorf("rental.finePerDay must not be negative, got %s", rate)
	}
	if rate.IsZero() {
		return noFinePolicy{}, nil
	}

	return perDayFinePolicy{rate: rate}, nil
}
