package postgres

import (
	"context"
	"time"

	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/repository"
	"librarian/internal/errors"
	"librarian/internal/infra/persistence/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type rentalRepository struct {
	db *gorm.DB
}

// NewRentalRepository returns a GORM-backed repository.RentalRepository.
func NewRentalRepository(db *gorm.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

// withDetails preloads client and copy->book->author.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").Preload("Copy.Book.Author")
}

func (repo *rentalRepository) FindByID(ctx context.Context, id uint64) (*entity.Rental, error) {
	var rentalM model.RentalModel
	if err := withDetails(repo.db.WithContext(ctx)).Where("id = ?", id).First(&rentalM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRentalNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find rental")
	}

	return toRentalDomain(&rentalM), nil
}

func (repo *rentalRepository) List(ctx context.Context) ([]*entity.Rental, error) {
	var rentalMs []*model.RentalModel
	if err := withDetails(repo.db.WithContext(ctx)).Order("id ASC").Find(&rentalMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list rentals")
	}

	rentals := make([]*entity.Rental, 0, len(rentalMs))
	for _, rentalM := range rentalMs {
		rentals = append(rentals, toRentalDomain(rentalM))
	}

	return rentals, nil
}

// HasOpenRental always reads from the primary; a lagging replica could
// report a copy free that was just rented.
func (repo *rentalRepository) HasOpenRental(ctx context.Context, copyID uint64) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.RentalModel{}).
		Where("copy_id = ? AND return_date IS NULL", copyID).
		Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check open rentals")
	}

	return count > 0, nil
}

// Create inserts an open rental. The partial unique index rejects a second
// open rental for the same copy with repository.ErrOpenRentalExists.
func (repo *rentalRepository) Create(ctx context.Context, rental *entity.Rental) error {
	rentalM := fromRentalDomain(rental)
	if err := repo.db.WithContext(ctx).Omit("Client", "Copy").Create(rentalM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrOpenRentalExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create rental")
	}
	rental.ID = rentalM.ID

	return nil
}

// Close is a conditional update, so of two concurrent closes only one
// affects a row.
func (repo *rentalRepository) Close(ctx context.Context, id uint64, returnedAt time.Time, fine *decimal.Decimal) error {
	fineValue := decimal.NullDecimal{}
	if fine != nil {
		fineValue = decimal.NullDecimal{Decimal: *fine, Valid: true}
	}

	result := repo.db.WithContext(ctx).
		Model(&model.RentalModel{}).
		Where("id = ? AND return_date IS NULL", id).
		Updates(map[string]any{
			"return_date": returnedAt,
			"fine_value":  fineValue,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to close rental")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := repo.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&model.RentalModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to check rental")
	}
	if count == 0 {
		return repository.ErrRentalNotFound
	}

	return repository.ErrRentalClosed
}

func (repo *rentalRepository) Delete(ctx context.Context, id uint64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RentalModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete rental")
	}
	if result.RowsAffected == 0 {
		return repository.ErrRentalNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toRentalDomain(data *model.RentalModel) *entity.Rental {
	rental := &entity.Rental{
		ID:         data.ID,
		ClientCPF:  data.ClientCPF,
		CopyID:     data.CopyID,
		RentalDate: data.RentalDate,
		DueDate:    data.DueDate,
		ReturnDate: data.ReturnDate,
		Client:     toClientDomain(data.Client),
		Copy:       toCopyDomain(data.Copy),
	}
	if data.FineValue.Valid {
		fine := data.FineValue.Decimal
		rental.FineValue = &fine
	}

	return rental
}

func fromRentalDomain(data *entity.Rental) *model.RentalModel {
	rentalM := &model.RentalModel{
		ID:         data.ID,
		ClientCPF:  data.ClientCPF,
		CopyID:     data.CopyID,
		RentalDate: data.RentalDate,
		DueDate:    data.DueDate,
		ReturnDate: data.ReturnDate,
	}
	if data.FineValue != nil {
		rentalM.FineValue = decimal.NullDecimal{Decimal: *data.FineValue, Valid: true}
	}

	return rentalM
}
