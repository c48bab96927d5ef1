package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "librarian/internal/delivery/context"
	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/repository"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"go.uber.org/fx"
)

type clientService struct {
	clientRepo repository.ClientRepository
	logger     *slog.Logger
}

// ClientServiceParams holds dependencies for ClientService, injected by Fx.
type ClientServiceParams struct {
	fx.In

	ClientRepo repository.ClientRepository
	Logger     *slog.Logger
}

// NewClientService is the constructor for clientService.
func NewClientService(params ClientServiceParams) usecase.ClientUsecase {
	return &clientService{
		clientRepo: params.ClientRepo,
		logger:     params.Logger,
	}
}

// RegisterClient stores the CPF without punctuation.
func (srv *clientService) RegisterClient(ctx context.Context, input *usecase.RegisterClientInput) (*entity.Client, error) {
	cpf := entity.NormalizeCPF(input.CPF)
	name := strings.TrimSpace(input.Name)
	if cpf == "" || name == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.WithDetails("cpf and name are required")
	}
	if !isDigits(cpf) {
		return nil, domainerrors.ErrInvalidCPF.WithSuggestion("send the cpf as 12345678909 or 123.456.789-09")
	}

	_, err := srv.clientRepo.FindByCPF(ctx, cpf)
	switch {
	case err == nil:
		return nil, domainerrors.ErrClientAlreadyExists
	case !errors.Is(err, repository.ErrClientNotFound):
		return nil, errors.Wrap(err, "failed to check client")
	}

	client := &entity.Client{
		CPF:   cpf,
		Name:  name,
		Email: normalizeEmail(input.Email),
		Phone: strings.TrimSpace(input.Phone),
	}
	if err := srv.clientRepo.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrClientExists) {
			return nil, domainerrors.ErrClientAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create client")
	}

	deliverycontext.Logger(ctx, srv.logger).Info("Client registered", slog.String("cpf", cpf))

	return client, nil
}

func (srv *clientService) GetClient(ctx context.Context, cpf string) (*entity.Client, error) {
	client, err := srv.clientRepo.FindByCPF(ctx, entity.NormalizeCPF(cpf))
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, domainerrors.ErrClientNotFound
		}

		return nil, errors.Wrap(err, "failed to find client")
	}

	return client, nil
}

func (srv *clientService) ListClients(ctx context.Context) ([]*entity.Client, error) {
	clients, err := srv.clientRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients")
	}
	if len(clients) == 0 {
		return nil, domainerrors.ErrClientNotFound.WithMessage("no clients registered")
	}

	return clients, nil
}
