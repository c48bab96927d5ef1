package repository

import (
	"context"
	"errors"

	"librarian/internal/domain/entity"
)

var (
	ErrAuthorNotFound  = errors.New("author not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrISBNTaken       = errors.New("isbn already registered")
	ErrCopyNotFound    = errors.New("copy not found")
	ErrBarCodeTaken    = errors.New("bar code already registered")
	ErrReferencedByRow = errors.New("row is still referenced")
)

// AuthorRepository persists authors.
type AuthorRepository interface {
	// FindByID loads the author together with their books.
	FindByID(ctx context.Context, id uint64) (*entity.Author, error)
	List(ctx context.Context) ([]*entity.Author, error)
	Create(ctx context.Context, author *entity.Author) error
	Update(ctx context.Context, author *entity.Author) error
	Delete(ctx context.Context, id uint64) error
	CountBooks(ctx context.Context, id uint64) (int64, error)
}

// BookRepository persists catalog titles.
type BookRepository interface {
	// FindByID loads the book with its author.
	FindByID(ctx context.Context, id uint64) (*entity.Book, error)
	// List loads every book with its author and copies.
	List(ctx context.Context) ([]*entity.Book, error)
	Create(ctx context.Context, book *entity.Book) error
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id uint64) error
}

// CopyRepository persists physical copies.
type CopyRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Copy, error)
	List(ctx context.Context) ([]*entity.Copy, error)
	ListByBook(ctx context.Context, bookID uint64) ([]*entity.Copy, error)
	Create(ctx context.Context, copy *entity.Copy) error
	Update(ctx context.Context, copy *entity.Copy) error
	// SetAvailable updates only the informational availability flag.
	SetAvailable(ctx context.Context, id uint64, available bool) error
	Delete(ctx context.Context, id uint64) error
}
