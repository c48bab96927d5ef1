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

type catalogService struct {
	authorRepo   repository.AuthorRepository
	bookRepo     repository.BookRepository
	copyRepo     repository.CopyRepository
	rentalRepo   repository.RentalRepository
	labelService service.LabelService
	logger       *slog.Logger
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	AuthorRepo   repository.AuthorRepository
	BookRepo     repository.BookRepository
	CopyRepo     repository.CopyRepository
	RentalRepo   repository.RentalRepository
	LabelService service.LabelService
	Logger       *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		authorRepo:   params.AuthorRepo,
		bookRepo:     params.BookRepo,
		copyRepo:     params.CopyRepo,
		rentalRepo:   params.RentalRepo,
		labelService: params.LabelService,
		logger:       params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// --- Authors ---

func (srv *catalogService) CreateAuthor(ctx context.Context, input *usecase.AuthorInput) (*entity.Author, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.WithDetails("name is required")
	}

	author := &entity.Author{Name: name, Nationality: strings.TrimSpace(input.Nationality)}
	if input.BirthDate != "" {
		birth, err := parseDate("birth_date", input.BirthDate)
		if err != nil {
			return nil, err
		}
		author.BirthDate = &birth
	}

	if err := srv.authorRepo.Create(ctx, author); err != nil {
		return nil, errors.Wrap(err, "failed to create author")
	}

	return author, nil
}

func (srv *catalogService) GetAuthor(ctx context.Context, id string) (*entity.Author, error) {
	authorID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return srv.findAuthor(ctx, authorID)
}

func (srv *catalogService) ListAuthors(ctx context.Context) ([]*entity.Author, error) {
	authors, err := srv.authorRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list authors")
	}
	if len(authors) == 0 {
		return nil, domainerrors.ErrAuthorNotFound.WithMessage("no authors registered")
	}

	return authors, nil
}

func (srv *catalogService) EditAuthor(ctx context.Context, id string, input *usecase.EditAuthorInput) (*entity.Author, error) {
	authorID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	author, err := srv.findAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("name must not be empty")
		}
		author.Name = name
	}
	if input.Nationality != nil {
		author.Nationality = strings.TrimSpace(*input.Nationality)
	}
	if input.BirthDate != nil {
		author.BirthDate = nil
		if *input.BirthDate != "" {
			birth, err := parseDate("birth_date", *input.BirthDate)
			if err != nil {
				return nil, err
			}
			author.BirthDate = &birth
		}
	}

	if err := srv.authorRepo.Update(ctx, author); err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, domainerrors.ErrAuthorNotFound
		}

		return nil, errors.Wrap(err, "failed to update author")
	}

	return author, nil
}

// DeleteAuthor refuses while the author still has books.
func (srv *catalogService) DeleteAuthor(ctx context.Context, id string) error {
	authorID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := srv.findAuthor(ctx, authorID); err != nil {
		return err
	}

	count, err := srv.authorRepo.CountBooks(ctx, authorID)
	if err != nil {
		return errors.Wrap(err, "failed to count author books")
	}
	if count > 0 {
		return domainerrors.ErrAuthorHasBooks
	}

	if err := srv.authorRepo.Delete(ctx, authorID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferencedByRow):
			return domainerrors.ErrAuthorHasBooks
		case errors.Is(err, repository.ErrAuthorNotFound):
			return domainerrors.ErrAuthorNotFound
		}

		return errors.Wrap(err, "failed to delete author")
	}

	srv.log(ctx).Info("Author deleted", slog.Uint64("authorID", authorID))

	return nil
}

func (srv *catalogService) findAuthor(ctx context.Context, id uint64) (*entity.Author, error) {
	author, err := srv.authorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, domainerrors.ErrAuthorNotFound
		}

		return nil, errors.Wrap(err, "failed to find author")
	}

	return author, nil
}

// --- Books ---

func validPublicationYear(year int) bool {
	return year > 0 && year <= time.Now().Year()+1
}

func (srv *catalogService) CreateBook(ctx context.Context, input *usecase.BookInput) (*entity.Book, error) {
	title := strings.TrimSpace(input.Title)
	isbn := strings.TrimSpace(input.ISBN)
	if title == "" || isbn == "" || input.AuthorID == 0 || input.PublicationYear == 0 {
		return nil, domainerrors.ErrRequiredFieldsMissing.
			WithDetails("title, isbn, publication_year and author_id are required")
	}
	if !validPublicationYear(input.PublicationYear) {
		return nil, domainerrors.ErrValidationFailed.WithMessage("publication year is out of range")
	}
	if _, err := srv.findAuthor(ctx, input.AuthorID); err != nil {
		return nil, err
	}

	book := &entity.Book{
		Title:           title,
		ISBN:            isbn,
		PublicationYear: input.PublicationYear,
		Publisher:       strings.TrimSpace(input.Publisher),
		AuthorID:        input.AuthorID,
	}
	if err := srv.bookRepo.Create(ctx, book); err != nil {
		return nil, srv.mapBookWriteError(err, "failed to create book")
	}

	return book, nil
}

func (srv *catalogService) GetBook(ctx context.Context, id string) (*entity.Book, error) {
	bookID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return srv.findBook(ctx, bookID)
}

func (srv *catalogService) ListBooks(ctx context.Context) ([]*entity.Book, error) {
	books, err := srv.bookRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	if len(books) == 0 {
		return nil, domainerrors.ErrBookNotFound.WithMessage("no books registered")
	}

	return books, nil
}

func (srv *catalogService) EditBook(ctx context.Context, id string, input *usecase.EditBookInput) (*entity.Book, error) {
	bookID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	book, err := srv.findBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("title must not be empty")
		}
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.ISBN != nil {
		if strings.TrimSpace(*input.ISBN) == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("isbn must not be empty")
		}
		book.ISBN = strings.TrimSpace(*input.ISBN)
	}
	if input.PublicationYear != nil {
		if !validPublicationYear(*input.PublicationYear) {
			return nil, domainerrors.ErrValidationFailed.WithMessage("publication year is out of range")
		}
		book.PublicationYear = *input.PublicationYear
	}
	if input.Publisher != nil {
		book.Publisher = strings.TrimSpace(*input.Publisher)
	}
	if input.AuthorID != nil && *input.AuthorID != book.AuthorID {
		author, err := srv.findAuthor(ctx, *input.AuthorID)
		if err != nil {
			return nil, err
		}
		book.AuthorID = author.ID
		book.Author = author
	}

	if err := srv.bookRepo.Update(ctx, book); err != nil {
		return nil, srv.mapBookWriteError(err, "failed to update book")
	}

	return book, nil
}

func (srv *catalogService) DeleteBook(ctx context.Context, id string) error {
	bookID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := srv.bookRepo.Delete(ctx, bookID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferencedByRow):
			return domainerrors.ErrBookHasCopies
		case errors.Is(err, repository.ErrBookNotFound):
			return domainerrors.ErrBookNotFound
		}

		return errors.Wrap(err, "failed to delete book")
	}

	srv.log(ctx).Info("Book deleted", slog.Uint64("bookID", bookID))

	return nil
}

func (srv *catalogService) mapBookWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrISBNTaken):
		return domainerrors.ErrBookISBNConflict
	case errors.Is(err, repository.ErrAuthorNotFound):
		return domainerrors.ErrAuthorNotFound
	case errors.Is(err, repository.ErrBookNotFound):
		return domainerrors.ErrBookNotFound
	}

	return errors.Wrap(err, msg)
}

func (srv *catalogService) findBook(ctx context.Context, id uint64) (*entity.Book, error) {
	book, err := srv.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, domainerrors.ErrBookNotFound
		}

		return nil, errors.Wrap(err, "failed to find book")
	}

	return book, nil
}

// --- Copies ---

func (srv *catalogService) CreateCopy(ctx context.Context, input *usecase.CopyInput) (*entity.Copy, error) {
	barCode := strings.TrimSpace(input.BarCode)
	condition := strings.TrimSpace(input.Condition)
	if input.BookID == 0 || barCode == "" || condition == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.WithDetails("book_id, condition and bar_code are required")
	}
	if _, err := srv.findBook(ctx, input.BookID); err != nil {
		return nil, err
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}

	c := &entity.Copy{
		BookID:    input.BookID,
		Condition: condition,
		Available: available,
		BarCode:   barCode,
	}
	if err := srv.copyRepo.Create(ctx, c); err != nil {
		return nil, srv.mapCopyWriteError(err, "failed to create copy")
	}

	return c, nil
}

func (srv *catalogService) GetCopy(ctx context.Context, id string) (*entity.Copy, error) {
	copyID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return srv.findCopy(ctx, copyID)
}

func (srv *catalogService) ListCopies(ctx context.Context) ([]*entity.Copy, error) {
	copies, err := srv.copyRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list copies")
	}
	if len(copies) == 0 {
		return nil, domainerrors.ErrCopyNotFound.WithMessage("no copies registered")
	}

	return copies, nil
}

func (srv *catalogService) ListCopiesByBook(ctx context.Context, bookID string) ([]*entity.Copy, error) {
	id, err := parseID(bookID)
	if err != nil {
		return nil, err
	}
	if _, err := srv.findBook(ctx, id); err != nil {
		return nil, err
	}

	copies, err := srv.copyRepo.ListByBook(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list copies of book")
	}
	if len(copies) == 0 {
		return nil, domainerrors.ErrCopyNotFound.WithMessage("book has no copies")
	}

	return copies, nil
}

func (srv *catalogService) EditCopy(ctx context.Context, id string, input *usecase.EditCopyInput) (*entity.Copy, error) {
	copyID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := srv.findCopy(ctx, copyID)
	if err != nil {
		return nil, err
	}

	if input.Condition != nil {
		if strings.TrimSpace(*input.Condition) == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("condition must not be empty")
		}
		c.Condition = strings.TrimSpace(*input.Condition)
	}
	if input.BarCode != nil {
		if strings.TrimSpace(*input.BarCode) == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("bar code must not be empty")
		}
		c.BarCode = strings.TrimSpace(*input.BarCode)
	}
	if input.Available != nil {
		c.Available = *input.Available
	}

	if err := srv.copyRepo.Update(ctx, c); err != nil {
		return nil, srv.mapCopyWriteError(err, "failed to update copy")
	}

	return c, nil
}

// DeleteCopy refuses while the copy is out, and keeps copies with rental history.
func (srv *catalogService) DeleteCopy(ctx context.Context, id string) error {
	copyID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := srv.findCopy(ctx, copyID); err != nil {
		return err
	}

	open, err := srv.rentalRepo.HasOpenRental(ctx, copyID)
	if err != nil {
		return errors.Wrap(err, "failed to check open rentals")
	}
	if open {
		return domainerrors.ErrCopyHasOpenRental
	}

	if err := srv.copyRepo.Delete(ctx, copyID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferencedByRow):
			return domainerrors.ErrCopyHasRentals
		case errors.Is(err, repository.ErrCopyNotFound):
			return domainerrors.ErrCopyNotFound
		}

		return errors.Wrap(err, "failed to delete copy")
	}

	srv.log(ctx).Info("Copy deleted", slog.Uint64("copyID", copyID))

	return nil
}

// CopyLabel renders the printable QR label of a copy.
func (srv *catalogService) CopyLabel(ctx context.Context, id string) ([]byte, error) {
	copyID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := srv.findCopy(ctx, copyID)
	if err != nil {
		return nil, err
	}

	png, err := srv.labelService.CopyLabel(c.BarCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render copy label")
	}

	return png, nil
}

func (srv *catalogService) mapCopyWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrBarCodeTaken):
		return domainerrors.ErrCopyBarCodeConflict
	case errors.Is(err, repository.ErrBookNotFound):
		return domainerrors.ErrBookNotFound
	case errors.Is(err, repository.ErrCopyNotFound):
		return domainerrors.ErrCopyNotFound
	}

	return errors.Wrap(err, msg)
}

func (srv *catalogService) findCopy(ctx context.Context, id uint64) (*entity.Copy, error) {
	c, err := srv.copyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCopyNotFound) {
			return nil, domainerrors.ErrCopyNotFound
		}

		return nil, errors.Wrap(err, "failed to find copy")
	}

	return c, nil
}
