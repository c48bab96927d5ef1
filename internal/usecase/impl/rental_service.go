package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "librarian/internal/delivery/context"
	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/repository"
	"librarian/internal/domain/service"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"go.uber.org/fx"
)

// rentalService implements the RentalUsecase interface.
//
// At most one rental per copy may be open. Every mutation of a copy's
// rentals runs under that copy's lock and inside one transaction; the
// partial unique index on rentals catches writers outside this process.
type rentalService struct {
	txManager  repository.TransactionManager
	rentalRepo repository.RentalRepository
	finePolicy service.FinePolicy
	metrics    service.LedgerMetrics
	logger     *slog.Logger
	copyLocks  *keyedMutex
	now        func() time.Time
}

// RentalServiceParams holds dependencies for RentalService, injected by Fx.
type RentalServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	RentalRepo repository.RentalRepository
	FinePolicy service.FinePolicy
	Metrics    service.LedgerMetrics
	Logger     *slog.Logger
}

// NewRentalService is the constructor for rentalService.
func NewRentalService(params RentalServiceParams) usecase.RentalUsecase {
	return &rentalService{
		txManager:  params.TxManager,
		rentalRepo: params.RentalRepo,
		finePolicy: params.FinePolicy,
		metrics:    params.Metrics,
		logger:     params.Logger,
		copyLocks:  newKeyedMutex(),
		now:        time.Now,
	}
}

func (srv *rentalService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// CreateRental opens a rental for a copy that has none open.
func (srv *rentalService) CreateRental(ctx context.Context, input *usecase.CreateRentalInput) (*entity.Rental, error) {
	cpf := entity.NormalizeCPF(input.ClientCPF)
	if cpf == "" || input.CopyID == 0 || strings.TrimSpace(input.RentalDate) == "" || strings.TrimSpace(input.DueDate) == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.
			WithSuggestion("send clientCpf, copyId, rental_date and due_date")
	}

	rentalDate, err := parseDate("rental_date", input.RentalDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", input.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(rentalDate) {
		return nil, domainerrors.ErrValidationFailed.
			WithMessage("due date must not be before rental date")
	}

	unlock := srv.copyLocks.Lock(input.CopyID)
	defer unlock()

	rental := &entity.Rental{
		ClientCPF:  cpf,
		CopyID:     input.CopyID,
		RentalDate: rentalDate,
		DueDate:    dueDate,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.NewClientRepository().FindByCPF(ctx, cpf); err != nil {
			if errors.Is(err, repository.ErrClientNotFound) {
				return domainerrors.ErrClientNotFound
			}

			return errors.Wrap(err, "failed to find client")
		}

		copyRepo := repoFactory.NewCopyRepository()
		if _, err := copyRepo.FindByID(ctx, input.CopyID); err != nil {
			if errors.Is(err, repository.ErrCopyNotFound) {
				return domainerrors.ErrCopyNotFound
			}

			return errors.Wrap(err, "failed to find copy")
		}

		rentalRepo := repoFactory.NewRentalRepository()
		open, err := rentalRepo.HasOpenRental(ctx, input.CopyID)
		if err != nil {
			return errors.Wrap(err, "failed to check open rentals")
		}
		if open {
			return domainerrors.ErrCopyAlreadyRented
		}

		if err := rentalRepo.Create(ctx, rental); err != nil {
			if errors.Is(err, repository.ErrOpenRentalExists) {
				return domainerrors.ErrCopyAlreadyRented
			}

			return errors.Wrap(err, "failed to create rental")
		}

		if err := copyRepo.SetAvailable(ctx, input.CopyID, false); err != nil {
			return errors.Wrap(err, "failed to mark copy rented")
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrCopyAlreadyRented) {
			srv.metrics.RentalConflict()
		}
		srv.log(ctx).Info("Rental not created", slog.Uint64("copyID", input.CopyID), slog.Any("error", err))

		return nil, err
	}

	srv.metrics.RentalCreated()
	srv.log(ctx).Info("Rental created", slog.Uint64("rentalID", rental.ID), slog.Uint64("copyID", rental.CopyID))

	return rental, nil
}

func (srv *rentalService) ListRentals(ctx context.Context) ([]*entity.Rental, error) {
	rentals, err := srv.rentalRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rentals")
	}
	if len(rentals) == 0 {
		return nil, domainerrors.ErrRentalNotFound.WithMessage("no rentals registered")
	}

	return rentals, nil
}

func (srv *rentalService) GetRental(ctx context.Context, id string) (*entity.Rental, error) {
	rentalID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return srv.findRental(ctx, rentalID)
}

// FinishRental closes an open rental. It is not idempotent: a second call
// reports the rental as already finished.
func (srv *rentalService) FinishRental(ctx context.Context, id string, input *usecase.FinishRentalInput) (*entity.Rental, error) {
	rentalID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if input != nil && input.FineValue != nil && input.FineValue.IsNegative() {
		return nil, domainerrors.ErrInvalidFine
	}

	rental, err := srv.findRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.IsOpen() {
		return nil, domainerrors.ErrRentalAlreadyFinished
	}

	unlock := srv.copyLocks.Lock(rental.CopyID)
	defer unlock()

	returnedAt := srv.now().UTC()
	fine := srv.finePolicy.Fine(rental, returnedAt)
	if input != nil && input.FineValue != nil {
		fine = input.FineValue
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewRentalRepository().Close(ctx, rentalID, returnedAt, fine); err != nil {
			switch {
			case errors.Is(err, repository.ErrRentalClosed):
				return domainerrors.ErrRentalAlreadyFinished
			case errors.Is(err, repository.ErrRentalNotFound):
				return domainerrors.ErrRentalNotFound
			}

			return errors.Wrap(err, "failed to close rental")
		}

		if err := repoFactory.NewCopyRepository().SetAvailable(ctx, rental.CopyID, true); err != nil {
			return errors.Wrap(err, "failed to mark copy available")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.metrics.RentalFinished(fine != nil)
	srv.log(ctx).Info("Rental finished", slog.Uint64("rentalID", rentalID), slog.Bool("fined", fine != nil))

	return srv.findRental(ctx, rentalID)
}

// DeleteRental removes the record. Deleting an open rental frees the copy.
func (srv *rentalService) DeleteRental(ctx context.Context, id string) error {
	rentalID, err := parseID(id)
	if err != nil {
		return err
	}

	rental, err := srv.findRental(ctx, rentalID)
	if err != nil {
		return err
	}

	unlock := srv.copyLocks.Lock(rental.CopyID)
	defer unlock()

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewRentalRepository().Delete(ctx, rentalID); err != nil {
			if errors.Is(err, repository.ErrRentalNotFound) {
				return domainerrors.ErrRentalNotFound
			}

			return errors.Wrap(err, "failed to delete rental")
		}

		if rental.IsOpen() {
			if err := repoFactory.NewCopyRepository().SetAvailable(ctx, rental.CopyID, true); err != nil {
				return errors.Wrap(err, "failed to mark copy available")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Rental deleted", slog.Uint64("rentalID", rentalID), slog.Bool("wasOpen", rental.IsOpen()))

	return nil
}

func (srv *rentalService) findRental(ctx context.Context, id uint64) (*entity.Rental, error) {
	rental, err := srv.rentalRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return nil, domainerrors.ErrRentalNotFound
		}

		return nil, errors.Wrap(err, "failed to find rental")
	}

	return rental, nil
}
