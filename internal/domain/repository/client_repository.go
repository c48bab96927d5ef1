package repository

import (
	"context"
	"errors"

	"librarian/internal/domain/entity"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrClientExists   = errors.New("client already exists")
)

// ClientRepository persists library patrons keyed by CPF.
type ClientRepository interface {
	FindByCPF(ctx context.Context, cpf string) (*entity.Client, error)
	List(ctx context.Context) ([]*entity.Client, error)
	Create(ctx context.Context, client *entity.Client) error
}
