// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"librarian/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new staff account.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// EditUserInput carries a partial update. Nil fields are left untouched.
type EditUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *entity.Role
}

// --- Output DTOs ---

// LoginOutput returns the session token after a successful login.
type LoginOutput struct {
	Token     string
	ExpiresIn int64 // seconds
	User      *entity.Profile
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
// User ids arrive as text and must be UUIDs.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*entity.Profile, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetUser(ctx context.Context, id string) (*entity.Profile, error)
	ListUsers(ctx context.Context) ([]*entity.Profile, error)
	EditUser(ctx context.Context, id string, input *EditUserInput) (*entity.Profile, error)
	DeleteUser(ctx context.Context, id string) error
}
