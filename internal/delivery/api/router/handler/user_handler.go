package handler

import (
	"log/slog"
	"strings"

	"librarian/internal/delivery/api/middleware"
	"librarian/internal/delivery/api/response"
	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type registerUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"` // the password policy reports its own violations
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type editUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin librarian"`
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	uc     usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: logger,
	}
}

// RegisterUser handles the staff registration request.
func (h *UserHandler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	profile, err := h.uc.RegisterUser(c.Request().Context(), &usecase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, profile, "User registered successfully")
}

// Login handles the user login request.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Login(c, output.Token, output.ExpiresIn, output.User, "Login successful")
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, users, "Users retrieved successfully")
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.uc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, user, "User retrieved successfully")
}

// EditUser updates a user. Users may edit themselves; admins anyone.
// Role changes are reserved to admins.
func (h *UserHandler) EditUser(c echo.Context) error {
	if err := authorizeSelfOrAdmin(c, c.Param("id"), "edit"); err != nil {
		return err
	}

	var req editUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid user input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.EditUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		if !middleware.HasRole(c, entity.RoleAdmin) {
			return domainerrors.ErrForbidden.WithMessage("only admins can change roles")
		}
		role := entity.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.uc.EditUser(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, user, "User updated successfully")
}

// DeleteUser removes an account. Users may delete themselves; admins anyone.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if err := authorizeSelfOrAdmin(c, id, "delete"); err != nil {
		return err
	}

	if err := h.uc.DeleteUser(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, nil, "User deleted successfully")
}

// authorizeSelfOrAdmin lets the call through when the path id is the
// caller's own account or the caller is an admin.
func authorizeSelfOrAdmin(c echo.Context, rawID, action string) error {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return domainerrors.ErrInvalidID.WithDetails(rawID)
	}

	if callerID, ok := middleware.GetUserID(c); ok && callerID == id {
		return nil
	}
	if middleware.HasRole(c, entity.RoleAdmin) {
		return nil
	}

	return domainerrors.ErrForbidden.WithMessage("only admins can " + action + " other users")
}
