package handler

import (
	"librarian/internal/delivery/api/response"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"github.com/labstack/echo/v4"
)

type registerClientRequest struct {
	CPF   string `json:"cpf" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// ClientHandler exposes library patrons.
type ClientHandler struct {
	uc usecase.ClientUsecase
}

// NewClientHandler is the constructor for ClientHandler, injected by Fx.
func NewClientHandler(uc usecase.ClientUsecase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

func (h *ClientHandler) RegisterClient(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid client input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	client, err := h.uc.RegisterClient(c.Request().Context(), &usecase.RegisterClientInput{
		CPF:   req.CPF,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, client, "Client registered successfully")
}

func (h *ClientHandler) ListClients(c echo.Context) error {
	clients, err := h.uc.ListClients(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, clients, "Clients retrieved successfully")
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	client, err := h.uc.GetClient(c.Request().Context(), c.Param("cpf"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, client, "Client retrieved successfully")
}
