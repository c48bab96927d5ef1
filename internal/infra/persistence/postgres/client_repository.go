package postgres

import (
	"context"

	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/repository"
	"librarian/internal/errors"
	"librarian/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository returns a GORM-backed repository.ClientRepository.
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (repo *clientRepository) FindByCPF(ctx context.Context, cpf string) (*entity.Client, error) {
	var clientM model.ClientModel
	if err := repo.db.WithContext(ctx).Where("cpf = ?", cpf).First(&clientM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClientNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find client")
	}

	return toClientDomain(&clientM), nil
}

func (repo *clientRepository) List(ctx context.Context) ([]*entity.Client, error) {
	var clientMs []*model.ClientModel
	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&clientMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list clients")
	}

	clients := make([]*entity.Client, 0, len(clientMs))
	for _, clientM := range clientMs {
		clients = append(clients, toClientDomain(clientM))
	}

	return clients, nil
}

func (repo *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	clientM := fromClientDomain(client)
	if err := repo.db.WithContext(ctx).Create(clientM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrClientExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create client")
	}

	client.CreatedAt = clientM.CreatedAt
	client.UpdatedAt = clientM.UpdatedAt

	return nil
}

func toClientDomain(data *model.ClientModel) *entity.Client {
	if data == nil {
		return nil
	}

	return &entity.Client{
		CPF:       data.CPF,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromClientDomain(data *entity.Client) *model.ClientModel {
	return &model.ClientModel{
		CPF:       data.CPF,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
