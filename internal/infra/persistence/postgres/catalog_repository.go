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

// --- Authors ---

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository returns a GORM-backed repository.AuthorRepository.
func NewAuthorRepository(db *gorm.DB) repository.AuthorRepository {
	return &authorRepository{db: db}
}

func (repo *authorRepository) FindByID(ctx context.Context, id uint64) (*entity.Author, error) {
	var authorM model.AuthorModel
	err := repo.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&authorM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthorNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find author")
	}

	return toAuthorDomain(&authorM), nil
}

func (repo *authorRepository) List(ctx context.Context) ([]*entity.Author, error) {
	var authorMs []*model.AuthorModel
	if err := repo.db.WithContext(ctx).Order("id ASC").Find(&authorMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list authors")
	}

	authors := make([]*entity.Author, 0, len(authorMs))
	for _, authorM := range authorMs {
		authors = append(authors, toAuthorDomain(authorM))
	}

	return authors, nil
}

func (repo *authorRepository) Create(ctx context.Context, author *entity.Author) error {
	authorM := fromAuthorDomain(author)
	if err := repo.db.WithContext(ctx).Create(authorM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create author")
	}
	author.ID = authorM.ID

	return nil
}

func (repo *authorRepository) Update(ctx context.Context, author *entity.Author) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AuthorModel{ID: author.ID}).
		Select("Name", "Nationality", "BirthDate").
		Updates(fromAuthorDomain(author))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update author")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAuthorNotFound
	}

	return nil
}

func (repo *authorRepository) Delete(ctx context.Context, id uint64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AuthorModel{})
	if err := result.Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReferencedByRow
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to delete author")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAuthorNotFound
	}

	return nil
}

func (repo *authorRepository) CountBooks(ctx context.Context, id uint64) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.BookModel{}).Where("author_id = ?", id).Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count author books")
	}

	return count, nil
}

// --- Books ---

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository returns a GORM-backed repository.BookRepository.
func NewBookRepository(db *gorm.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

func (repo *bookRepository) FindByID(ctx context.Context, id uint64) (*entity.Book, error) {
	var bookM model.BookModel
	if err := repo.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&bookM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find book")
	}

	return toBookDomain(&bookM), nil
}

func (repo *bookRepository) List(ctx context.Context) ([]*entity.Book, error) {
	var bookMs []*model.BookModel
	err := repo.db.WithContext(ctx).
		Preload("Author").
		Preload("Copies", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&bookMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list books")
	}

	books := make([]*entity.Book, 0, len(bookMs))
	for _, bookM := range bookMs {
		books = append(books, toBookDomain(bookM))
	}

	return books, nil
}

func (repo *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	bookM := fromBookDomain(book)
	if err := repo.db.WithContext(ctx).Omit("Author", "Copies").Create(bookM).Error; err != nil {
		switch {
		case isUniqueConstraintViolation(err):
			return repository.ErrISBNTaken
		case isForeignKeyConstraintViolation(err):
			return repository.ErrAuthorNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create book")
	}
	book.ID = bookM.ID

	return nil
}

func (repo *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BookModel{ID: book.ID}).
		Select("Title", "ISBN", "PublicationYear", "Publisher", "AuthorID").
		Updates(fromBookDomain(book))
	if err := result.Error; err != nil {
		switch {
		case isUniqueConstraintViolation(err):
			return repository.ErrISBNTaken
		case isForeignKeyConstraintViolation(err):
			return repository.ErrAuthorNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update book")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBookNotFound
	}

	return nil
}

func (repo *bookRepository) Delete(ctx context.Context, id uint64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BookModel{})
	if err := result.Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReferencedByRow
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to delete book")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBookNotFound
	}

	return nil
}

// --- Copies ---

type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository returns a GORM-backed repository.CopyRepository.
func NewCopyRepository(db *gorm.DB) repository.CopyRepository {
	return &copyRepository{db: db}
}

func (repo *copyRepository) FindByID(ctx context.Context, id uint64) (*entity.Copy, error) {
	var copyM model.CopyModel
	if err := repo.db.WithContext(ctx).Preload("Book").Where("id = ?", id).First(&copyM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCopyNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find copy")
	}

	return toCopyDomain(&copyM), nil
}

func (repo *copyRepository) List(ctx context.Context) ([]*entity.Copy, error) {
	return repo.list(ctx, repo.db.WithContext(ctx))
}

func (repo *copyRepository) ListByBook(ctx context.Context, bookID uint64) ([]*entity.Copy, error) {
	return repo.list(ctx, repo.db.WithContext(ctx).Where("book_id = ?", bookID))
}

func (repo *copyRepository) list(_ context.Context, db *gorm.DB) ([]*entity.Copy, error) {
	var copyMs []*model.CopyModel
	if err := db.Preload("Book").Order("id ASC").Find(&copyMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list copies")
	}

	copies := make([]*entity.Copy, 0, len(copyMs))
	for _, copyM := range copyMs {
		copies = append(copies, toCopyDomain(copyM))
	}

	return copies, nil
}

func (repo *copyRepository) Create(ctx context.Context, c *entity.Copy) error {
	copyM := fromCopyDomain(c)
	if err := repo.db.WithContext(ctx).Omit("Book").Create(copyM).Error; err != nil {
		switch {
		case isUniqueConstraintViolation(err):
			return repository.ErrBarCodeTaken
		case isForeignKeyConstraintViolation(err):
			return repository.ErrBookNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create copy")
	}
	c.ID = copyM.ID

	return nil
}

func (repo *copyRepository) Update(ctx context.Context, c *entity.Copy) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CopyModel{ID: c.ID}).
		Select("Condition", "Available", "BarCode").
		Updates(fromCopyDomain(c))
	if err := result.Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrBarCodeTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update copy")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCopyNotFound
	}

	return nil
}

func (repo *copyRepository) SetAvailable(ctx context.Context, id uint64, available bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CopyModel{}).
		Where("id = ?", id).
		Update("available", available)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update copy availability")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCopyNotFound
	}

	return nil
}

func (repo *copyRepository) Delete(ctx context.Context, id uint64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CopyModel{})
	if err := result.Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReferencedByRow
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to delete copy")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCopyNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toAuthorDomain(data *model.AuthorModel) *entity.Author {
	if data == nil {
		return nil
	}

	author := &entity.Author{
		ID:          data.ID,
		Name:        data.Name,
		Nationality: data.Nationality,
		BirthDate:   data.BirthDate,
	}
	for _, bookM := range data.Books {
		author.Books = append(author.Books, toBookDomain(bookM))
	}

	return author
}

func fromAuthorDomain(data *entity.Author) *model.AuthorModel {
	return &model.AuthorModel{
		ID:          data.ID,
		Name:        data.Name,
		Nationality: data.Nationality,
		BirthDate:   data.BirthDate,
	}
}

func toBookDomain(data *model.BookModel) *entity.Book {
	if data == nil {
		return nil
	}

	book := &entity.Book{
		ID:              data.ID,
		Title:           data.Title,
		ISBN:            data.ISBN,
		PublicationYear: data.PublicationYear,
		Publisher:       data.Publisher,
		AuthorID:        data.AuthorID,
		Author:          toAuthorDomain(data.Author),
	}
	for _, copyM := range data.Copies {
		book.Copies = append(book.Copies, toCopyDomain(copyM))
	}

	return book
}

func fromBookDomain(data *entity.Book) *model.BookModel {
	return &model.BookModel{
		ID:              data.ID,
		Title:           data.Title,
		ISBN:            data.ISBN,
		PublicationYear: data.PublicationYear,
		Publisher:       data.Publisher,
		AuthorID:        data.AuthorID,
	}
}

func toCopyDomain(data *model.CopyModel) *entity.Copy {
	if data == nil {
		return nil
	}

	return &entity.Copy{
		ID:        data.ID,
		BookID:    data.BookID,
		Condition: data.Condition,
		Available: data.Available,
		BarCode:   data.BarCode,
		Book:      toBookDomain(data.Book),
	}
}

func fromCopyDomain(data *entity.Copy) *model.CopyModel {
	return &model.CopyModel{
		ID:        data.ID,
		BookID:    data.BookID,
		Condition: data.Condition,
		Available: data.Available,
		BarCode:   data.BarCode,
	}
}
