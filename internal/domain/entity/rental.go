package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalStatus is derived from ReturnDate.
type RentalStatus string

const (
	RentalOpen   RentalStatus = "open"
	RentalClosed RentalStatus = "closed"
)

// Rental records a client holding a copy. A nil ReturnDate means open.
type Rental struct {
	ID         uint64           `json:"id"`
	ClientCPF  string           `json:"clientCpf"`
	CopyID     uint64           `json:"copyId"`
	RentalDate time.Time        `json:"rental_date"`
	DueDate    time.Time        `json:"due_date"`
	ReturnDate *time.Time       `json:"return_date"`
	FineValue  *decimal.Decimal `json:"fine_value"`
	Client     *Client          `json:"client,omitempty"`
	Copy       *Copy            `json:"copy,omitempty"`
}

// IsOpen reports whether the copy is still out.
func (r *Rental) IsOpen() bool {
	return r.ReturnDate == nil
}

// Status returns the lifecycle state.
func (r *Rental) Status() RentalStatus {
	if r.IsOpen() {
		return RentalOpen
	}

	return RentalClosed
}

// DaysOverdue counts whole days between the due date and at.
func (r *Rental) DaysOverdue(at time.Time) int {
	if !at.After(r.DueDate) {
		return 0
	}

	return int(at.Sub(r.DueDate).Hours() / 24)
}
