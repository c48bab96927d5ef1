package usecase

import (
	"context"

	"librarian/internal/domain/entity"
)

// RegisterClientInput registers a patron. The CPF may be formatted.
type RegisterClientInput struct {
	CPF   string
	Name  string
	Email string
	Phone string
}

// ClientUsecase manages library patrons.
type ClientUsecase interface {
	RegisterClient(ctx context.Context, input *RegisterClientInput) (*entity.Client, error)
	GetClient(ctx context.Context, cpf string) (*entity.Client, error)
	ListClients(ctx context.Context) ([]*entity.Client, error)
}
