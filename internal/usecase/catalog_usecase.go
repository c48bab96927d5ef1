package usecase

import (
	"context"

	"librarian/internal/domain/entity"
)

// AuthorInput registers an author.
type AuthorInput struct {
	Name        string
	Nationality string
	BirthDate   string // optional, YYYY-MM-DD or RFC3339
}

// EditAuthorInput carries a partial update.
type EditAuthorInput struct {
	Name        *string
	Nationality *string
	BirthDate   *string
}

type BookInput struct {
	Title           string
	ISBN            string
	PublicationYear int
	Publisher       string
	AuthorID        uint64
}

type EditBookInput struct {
	Title           *string
	ISBN            *string
	PublicationYear *int
	Publisher       *string
	AuthorID        *uint64
}

// CopyInput registers a physical copy. Available defaults to true.
type CopyInput struct {
	BookID    uint64
	Condition string
	Available *bool
	BarCode   string
}

type EditCopyInput struct {
	Condition *string
	Available *bool
	BarCode   *string
}

// CatalogUsecase manages authors, books and copies. Ids arrive as text.
type CatalogUsecase interface {
	CreateAuthor(ctx context.Context, input *AuthorInput) (*entity.Author, error)
	GetAuthor(ctx context.Context, id string) (*entity.Author, error)
	ListAuthors(ctx context.Context) ([]*entity.Author, error)
	EditAuthor(ctx context.Context, id string, input *EditAuthorInput) (*entity.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	CreateBook(ctx context.Context, input *BookInput) (*entity.Book, error)
	GetBook(ctx context.Context, id string) (*entity.Book, error)
	ListBooks(ctx context.Context) ([]*entity.Book, error)
	EditBook(ctx context.Context, id string, input *EditBookInput) (*entity.Book, error)
	DeleteBook(ctx context.Context, id string) error

	CreateCopy(ctx context.Context, input *CopyInput) (*entity.Copy, error)
	GetCopy(ctx context.Context, id string) (*entity.Copy, error)
	ListCopies(ctx context.Context) ([]*entity.Copy, error)
	ListCopiesByBook(ctx context.Context, bookID string) ([]*entity.Copy, error)
	EditCopy(ctx context.Context, id string, input *EditCopyInput) (*entity.Copy, error)
	DeleteCopy(ctx context.Context, id string) error
	CopyLabel(ctx context.Context, id string) ([]byte, error)
}
