package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"librarian/internal/domain/entity"
	"librarian/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory SQLite database with the GORM schema,
// including the partial unique index on open rentals.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(slog.New(slog.DiscardHandler), nil),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))

	return db
}

type fixture struct {
	client *entity.Client
	author *entity.Author
	book   *entity.Book
	copy   *entity.Copy
}

// seedCatalog inserts one client, author, book and available copy.
func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()

	client := &entity.Client{CPF: "12345678909", Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, NewClientRepository(db).Create(ctx, client))

	author := &entity.Author{Name: "Machado de Assis", Nationality: "Brazilian"}
	require.NoError(t, NewAuthorRepository(db).Create(ctx, author))

	book := &entity.Book{Title: "Dom Casmurro", ISBN: "9788535910667", PublicationYear: 1899, AuthorID: author.ID}
	require.NoError(t, NewBookRepository(db).Create(ctx, book))

	c := &entity.Copy{BookID: book.ID, Condition: "good", Available: true, BarCode: "BC-" + uuid.NewString()[:8]}
	require.NoError(t, NewCopyRepository(db).Create(ctx, c))

	return fixture{client: client, author: author, book: book, copy: c}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t
}
