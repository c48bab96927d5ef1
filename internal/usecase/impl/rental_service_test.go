package impl

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rentalServiceFixtures holds all test dependencies for rental service tests.
type rentalServiceFixtures struct {
	service *rentalService
	store   *memStore
	metrics *countingMetrics
	copyID  uint64
}

func createTestRentalService(t *testing.T) rentalServiceFixtures {
	t.Helper()

	store := newMemStore()
	metrics := newCountingMetrics()
	svc := NewRentalService(RentalServiceParams{
		TxManager:  memTxManager{s: store},
		RentalRepo: memRentalRepo{s: store},
		FinePolicy: noFinePolicy{},
		Metrics:    metrics,
		Logger:     discardLogger(),
	}).(*rentalService)
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	require.NoError(t, memClientRepo{s: store}.Create(ctx, &entity.Client{CPF: "111", Name: "Ana"}))
	author := &entity.Author{Name: "Machado de Assis"}
	require.NoError(t, memAuthorRepo{s: store}.Create(ctx, author))
	book := &entity.Book{Title: "Dom Casmurro", ISBN: "978-85-359-0277-1", PublicationYear: 1899, AuthorID: author.ID}
	require.NoError(t, memBookRepo{s: store}.Create(ctx, book))
	c := &entity.Copy{BookID: book.ID, Condition: "good", Available: true, BarCode: "BC-1"}
	require.NoError(t, memCopyRepo{s: store}.Create(ctx, c))

	return rentalServiceFixtures{service: svc, store: store, metrics: metrics, copyID: c.ID}
}

func (fx rentalServiceFixtures) rentalInput() *usecase.CreateRentalInput {
	return &usecase.CreateRentalInput{
		ClientCPF:  "111",
		CopyID:     fx.copyID,
		RentalDate: "2024-01-01",
		DueDate:    "2024-01-15",
	}
}

func (fx rentalServiceFixtures) copyAvailable(t *testing.T) bool {
	t.Helper()
	c, err := memCopyRepo{s: fx.store}.FindByID(context.Background(), fx.copyID)
	require.NoError(t, err)

	return c.Available
}

func fineOf(t *testing.T, raw string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)

	return &d
}

func TestRentalService_Scenario(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	first, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	assert.Equal(t, entity.RentalOpen, first.Status())
	assert.False(t, fx.copyAvailable(t))

	_, err = fx.service.CreateRental(ctx, fx.rentalInput())
	require.ErrorIs(t, err, domainerrors.ErrCopyAlreadyRented)
	assert.Equal(t, domainerrors.KindConflict, domainerrors.KindOf(err))

	id := strconv.FormatUint(first.ID, 10)
	finished, err := fx.service.FinishRental(ctx, id, &usecase.FinishRentalInput{FineValue: fineOf(t, "5.0")})
	require.NoError(t, err)
	assert.Equal(t, entity.RentalClosed, finished.Status())
	require.NotNil(t, finished.FineValue)
	assert.True(t, finished.FineValue.Equal(decimal.NewFromInt(5)))
	assert.True(t, fx.copyAvailable(t))

	again, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)

	assert.Equal(t, 2, fx.metrics.created)
	assert.Equal(t, 1, fx.metrics.conflicts)
	assert.Equal(t, 1, fx.metrics.fined)
}

func TestRentalService_CreateRental_ConcurrentSingleWinner(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	const callers = 32
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		errs      = make(chan error, callers)
		successes = make(chan *entity.Rental, callers)
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rental, err := fx.service.CreateRental(ctx, fx.rentalInput())
			if err != nil {
				errs <- err

				return
			}
			successes <- rental
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	close(successes)

	assert.Len(t, successes, 1)
	for err := range errs {
		assert.ErrorIs(t, err, domainerrors.ErrCopyAlreadyRented)
	}

	rentals, err := fx.service.ListRentals(ctx)
	require.NoError(t, err)
	open := 0
	for _, r := range rentals {
		if r.CopyID == fx.copyID && r.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)
	assert.Zero(t, fx.service.copyLocks.size())
}

func TestRentalService_CreateRental_RoundTrip(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	created, err := fx.service.CreateRental(ctx, &usecase.CreateRentalInput{
		ClientCPF:  "111",
		CopyID:     fx.copyID,
		RentalDate: "2024-03-01T10:00:00Z",
		DueDate:    "2024-03-08",
	})
	require.NoError(t, err)

	got, err := fx.service.GetRental(ctx, strconv.FormatUint(created.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, "111", got.ClientCPF)
	assert.Equal(t, fx.copyID, got.CopyID)
	assert.True(t, got.RentalDate.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, got.DueDate.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, got.ReturnDate)
	assert.Nil(t, got.FineValue)
}

func TestRentalService_CreateRental_Validation(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(in *usecase.CreateRentalInput)
		wantErr error
	}{
		{"missing cpf", func(in *usecase.CreateRentalInput) { in.ClientCPF = "" }, domainerrors.ErrRequiredFieldsMissing},
		{"missing copy", func(in *usecase.CreateRentalInput) { in.CopyID = 0 }, domainerrors.ErrRequiredFieldsMissing},
		{"missing due date", func(in *usecase.CreateRentalInput) { in.DueDate = " " }, domainerrors.ErrRequiredFieldsMissing},
		{"bad rental date", func(in *usecase.CreateRentalInput) { in.RentalDate = "01/02/2024" }, domainerrors.ErrInvalidDate},
		{"due before rental", func(in *usecase.CreateRentalInput) { in.DueDate = "2023-12-31" }, domainerrors.ErrValidationFailed},
		{"unknown client", func(in *usecase.CreateRentalInput) { in.ClientCPF = "999" }, domainerrors.ErrClientNotFound},
		{"unknown copy", func(in *usecase.CreateRentalInput) { in.CopyID = 404 }, domainerrors.ErrCopyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fx.rentalInput()
			tt.mutate(in)

			_, err := fx.service.CreateRental(ctx, in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := fx.service.ListRentals(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrRentalNotFound)
}

func TestRentalService_CreateRental_FormattedCPF(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()
	require.NoError(t, memClientRepo{s: fx.store}.Create(ctx, &entity.Client{CPF: "12345678909", Name: "Bia"}))

	in := fx.rentalInput()
	in.ClientCPF = "123.456.789-09"
	rental, err := fx.service.CreateRental(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "12345678909", rental.ClientCPF)
}

func TestRentalService_FinishRental_NotIdempotent(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	id := strconv.FormatUint(created.ID, 10)

	finished, err := fx.service.FinishRental(ctx, id, &usecase.FinishRentalInput{})
	require.NoError(t, err)
	require.NotNil(t, finished.ReturnDate)
	assert.Nil(t, finished.FineValue)

	_, err = fx.service.FinishRental(ctx, id, nil)
	require.ErrorIs(t, err, domainerrors.ErrRentalAlreadyFinished)
	assert.Equal(t, domainerrors.KindConflict, domainerrors.KindOf(err))
}

func TestRentalService_FinishRental_ConcurrentSingleWinner(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	id := strconv.FormatUint(created.ID, 10)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.FinishRental(ctx, id, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++

			continue
		}
		assert.ErrorIs(t, err, domainerrors.ErrRentalAlreadyFinished)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, fx.metrics.finished)
}

func TestRentalService_FinishRental_Errors(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	_, err := fx.service.FinishRental(ctx, "abc", nil)
	require.ErrorIs(t, err, domainerrors.ErrInvalidID)

	_, err = fx.service.FinishRental(ctx, "77", nil)
	require.ErrorIs(t, err, domainerrors.ErrRentalNotFound)

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	_, err = fx.service.FinishRental(ctx, strconv.FormatUint(created.ID, 10),
		&usecase.FinishRentalInput{FineValue: fineOf(t, "-1")})
	require.ErrorIs(t, err, domainerrors.ErrInvalidFine)
}

func TestRentalService_FinishRental_UsesFinePolicy(t *testing.T) {
	fx := createTestRentalService(t)
	fx.service.finePolicy = perDayFinePolicy{rate: decimal.RequireFromString("1.50")}
	ctx := context.Background()

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	id := strconv.FormatUint(created.ID, 10)

	// Due 2024-01-15, returned 2024-01-20 12:00: five whole days late.
	finished, err := fx.service.FinishRental(ctx, id, nil)
	require.NoError(t, err)
	require.NotNil(t, finished.FineValue)
	assert.True(t, finished.FineValue.Equal(decimal.RequireFromString("7.50")))
}

func TestRentalService_FinishRental_SuppliedFineWins(t *testing.T) {
	fx := createTestRentalService(t)
	fx.service.finePolicy = perDayFinePolicy{rate: decimal.RequireFromString("1.50")}
	ctx := context.Background()

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)

	finished, err := fx.service.FinishRental(ctx, strconv.FormatUint(created.ID, 10),
		&usecase.FinishRentalInput{FineValue: fineOf(t, "0")})
	require.NoError(t, err)
	require.NotNil(t, finished.FineValue)
	assert.True(t, finished.FineValue.IsZero())
}

func TestRentalService_DeleteRental(t *testing.T) {
	fx := createTestRentalService(t)
	ctx := context.Background()

	err := fx.service.DeleteRental(ctx, "999")
	require.ErrorIs(t, err, domainerrors.ErrRentalNotFound)
	assert.Equal(t, domainerrors.KindNotFound, domainerrors.KindOf(err))

	created, err := fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
	id := strconv.FormatUint(created.ID, 10)
	require.False(t, fx.copyAvailable(t))

	require.NoError(t, fx.service.DeleteRental(ctx, id))
	assert.True(t, fx.copyAvailable(t))

	_, err = fx.service.GetRental(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrRentalNotFound)

	_, err = fx.service.CreateRental(ctx, fx.rentalInput())
	require.NoError(t, err)
}
