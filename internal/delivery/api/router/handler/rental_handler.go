package handler

import (
	"log/slog"

	"librarian/internal/delivery/api/response"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// createRentalRequest keeps the field names existing clients already send.
type createRentalRequest struct {
	ClientCPF  string `json:"clientCpf"`
	CopyID     uint64 `json:"copyId"`
	RentalDate string `json:"rental_date"`
	DueDate    string `json:"due_date"`
}

type finishRentalRequest struct {
	FineValue *decimal.Decimal `json:"fine_value"`
}

// RentalHandler exposes the rental ledger.
type RentalHandler struct {
	uc     usecase.RentalUsecase
	logger *slog.Logger
}

// NewRentalHandler is the constructor for RentalHandler, injected by Fx.
func NewRentalHandler(uc usecase.RentalUsecase, logger *slog.Logger) *RentalHandler {
	return &RentalHandler{uc: uc, logger: logger}
}

// CreateRental leaves required-field checks to the ledger so the error
// carries the ledger's suggestion.
func (h *RentalHandler) CreateRental(c echo.Context) error {
	var req createRentalRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid rental input")
	}

	rental, err := h.uc.CreateRental(c.Request().Context(), &usecase.CreateRentalInput{
		ClientCPF:  req.ClientCPF,
		CopyID:     req.CopyID,
		RentalDate: req.RentalDate,
		DueDate:    req.DueDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, rental, "Rental created successfully")
}

func (h *RentalHandler) ListRentals(c echo.Context) error {
	rentals, err := h.uc.ListRentals(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, rentals, "Rentals retrieved successfully")
}

func (h *RentalHandler) GetRental(c echo.Context) error {
	rental, err := h.uc.GetRental(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, rental, "Rental retrieved successfully")
}

// FinishRental accepts an optional body with fine_value.
func (h *RentalHandler) FinishRental(c echo.Context) error {
	var req finishRentalRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid finish input")
	}

	rental, err := h.uc.FinishRental(c.Request().Context(), c.Param("id"), &usecase.FinishRentalInput{
		FineValue: req.FineValue,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, rental, "Rental finished successfully")
}

func (h *RentalHandler) DeleteRental(c echo.Context) error {
	if err := h.uc.DeleteRental(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, nil, "Rental deleted successfully")
}
