package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"librarian/internal/domain/entity"
	"librarian/internal/domain/repository"
	"librarian/internal/domain/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is a goroutine-safe in-memory backing store shared by the fake
// repositories. It enforces the same uniqueness rules as the database schema.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	users   map[uuid.UUID]*entity.User
	clients map[string]*entity.Client
	authors map[uint64]*entity.Author
	books   map[uint64]*entity.Book
	copies  map[uint64]*entity.Copy
	rentals map[uint64]*entity.Rental
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]*entity.User),
		clients: make(map[string]*entity.Client),
		authors: make(map[uint64]*entity.Author),
		books:   make(map[uint64]*entity.Book),
		copies:  make(map[uint64]*entity.Copy),
		rentals: make(map[uint64]*entity.Rental),
	}
}

func (s *memStore) id() uint64 {
	s.nextID++

	return s.nextID
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u

	return &clone, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			clone := *u

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r memUserRepo) List(context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		clone := *u
		out = append(out, &clone)
	}

	return out, nil
}

func (r memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.s.users[user.ID] = &clone

	return nil
}

func (r memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	clone := *user
	r.s.users[user.ID] = &clone

	return nil
}

func (r memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.s.users, id)

	return nil
}

// --- clients ---

type memClientRepo struct{ s *memStore }

func (r memClientRepo) FindByCPF(_ context.Context, cpf string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[cpf]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	clone := *c

	return &clone, nil
}

func (r memClientRepo) List(context.Context) ([]*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CPF < out[j].CPF })

	return out, nil
}

func (r memClientRepo) Create(_ context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.CPF]; ok {
		return repository.ErrClientExists
	}
	clone := *client
	r.s.clients[client.CPF] = &clone

	return nil
}

// --- authors ---

type memAuthorRepo struct{ s *memStore }

func (r memAuthorRepo) FindByID(_ context.Context, id uint64) (*entity.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.authors[id]
	if !ok {
		return nil, repository.ErrAuthorNotFound
	}
	clone := *a

	return &clone, nil
}

func (r memAuthorRepo) List(context.Context) ([]*entity.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Author, 0, len(r.s.authors))
	for _, id := range sortedKeys(r.s.authors) {
		clone := *r.s.authors[id]
		out = append(out, &clone)
	}

	return out, nil
}

func (r memAuthorRepo) Create(_ context.Context, author *entity.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	author.ID = r.s.id()
	clone := *author
	r.s.authors[author.ID] = &clone

	return nil
}

func (r memAuthorRepo) Update(_ context.Context, author *entity.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.authors[author.ID]; !ok {
		return repository.ErrAuthorNotFound
	}
	clone := *author
	r.s.authors[author.ID] = &clone

	return nil
}

func (r memAuthorRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.authors[id]; !ok {
		return repository.ErrAuthorNotFound
	}
	for _, b := range r.s.books {
		if b.AuthorID == id {
			return repository.ErrReferencedByRow
		}
	}
	delete(r.s.authors, id)

	return nil
}

func (r memAuthorRepo) CountBooks(_ context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.books {
		if b.AuthorID == id {
			n++
		}
	}

	return n, nil
}

// --- books ---

type memBookRepo struct{ s *memStore }

func (r memBookRepo) FindByID(_ context.Context, id uint64) (*entity.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	clone := *b

	return &clone, nil
}

func (r memBookRepo) List(context.Context) ([]*entity.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Book, 0, len(r.s.books))
	for _, id := range sortedKeys(r.s.books) {
		clone := *r.s.books[id]
		out = append(out, &clone)
	}

	return out, nil
}

func (r memBookRepo) isbnTaken(book *entity.Book) bool {
	for _, b := range r.s.books {
		if b.ID != book.ID && b.ISBN == book.ISBN {
			return true
		}
	}

	return false
}

func (r memBookRepo) Create(_ context.Context, book *entity.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.isbnTaken(book) {
		return repository.ErrISBNTaken
	}
	book.ID = r.s.id()
	clone := *book
	r.s.books[book.ID] = &clone

	return nil
}

func (r memBookRepo) Update(_ context.Context, book *entity.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[book.ID]; !ok {
		return repository.ErrBookNotFound
	}
	if r.isbnTaken(book) {
		return repository.ErrISBNTaken
	}
	clone := *book
	r.s.books[book.ID] = &clone

	return nil
}

func (r memBookRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	for _, c := range r.s.copies {
		if c.BookID == id {
			return repository.ErrReferencedByRow
		}
	}
	delete(r.s.books, id)

	return nil
}

// --- copies ---

type memCopyRepo struct{ s *memStore }

func (r memCopyRepo) FindByID(_ context.Context, id uint64) (*entity.Copy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.copies[id]
	if !ok {
		return nil, repository.ErrCopyNotFound
	}
	clone := *c

	return &clone, nil
}

func (r memCopyRepo) List(context.Context) ([]*entity.Copy, error) {
	return r.ListByBook(context.Background(), 0)
}

// ListByBook with bookID 0 lists every copy.
func (r memCopyRepo) ListByBook(_ context.Context, bookID uint64) ([]*entity.Copy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Copy, 0, len(r.s.copies))
	for _, id := range sortedKeys(r.s.copies) {
		c := r.s.copies[id]
		if bookID != 0 && c.BookID != bookID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}

	return out, nil
}

func (r memCopyRepo) barCodeTaken(c *entity.Copy) bool {
	for _, other := range r.s.copies {
		if other.ID != c.ID && other.BarCode == c.BarCode {
			return true
		}
	}

	return false
}

func (r memCopyRepo) Create(_ context.Context, c *entity.Copy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[c.BookID]; !ok {
		return repository.ErrBookNotFound
	}
	if r.barCodeTaken(c) {
		return repository.ErrBarCodeTaken
	}
	c.ID = r.s.id()
	clone := *c
	r.s.copies[c.ID] = &clone

	return nil
}

func (r memCopyRepo) Update(_ context.Context, c *entity.Copy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.copies[c.ID]; !ok {
		return repository.ErrCopyNotFound
	}
	if r.barCodeTaken(c) {
		return repository.ErrBarCodeTaken
	}
	clone := *c
	r.s.copies[c.ID] = &clone

	return nil
}

func (r memCopyRepo) SetAvailable(_ context.Context, id uint64, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.copies[id]
	if !ok {
		return repository.ErrCopyNotFound
	}
	c.Available = available

	return nil
}

func (r memCopyRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.copies[id]; !ok {
		return repository.ErrCopyNotFound
	}
	for _, rental := range r.s.rentals {
		if rental.CopyID == id {
			return repository.ErrReferencedByRow
		}
	}
	delete(r.s.copies, id)

	return nil
}

// --- rentals ---

type memRentalRepo struct{ s *memStore }

func (r memRentalRepo) FindByID(_ context.Context, id uint64) (*entity.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental, ok := r.s.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	clone := *rental

	return &clone, nil
}

func (r memRentalRepo) List(context.Context) ([]*entity.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Rental, 0, len(r.s.rentals))
	for _, id := range sortedKeys(r.s.rentals) {
		clone := *r.s.rentals[id]
		out = append(out, &clone)
	}

	return out, nil
}

func (r memRentalRepo) openFor(copyID uint64) bool {
	for _, rental := range r.s.rentals {
		if rental.CopyID == copyID && rental.IsOpen() {
			return true
		}
	}

	return false
}

func (r memRentalRepo) HasOpenRental(_ context.Context, copyID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.openFor(copyID), nil
}

func (r memRentalRepo) Create(_ context.Context, rental *entity.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rental.IsOpen() && r.openFor(rental.CopyID) {
		return repository.ErrOpenRentalExists
	}
	rental.ID = r.s.id()
	clone := *rental
	r.s.rentals[rental.ID] = &clone

	return nil
}

func (r memRentalRepo) Close(_ context.Context, id uint64, returnedAt time.Time, fine *decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental, ok := r.s.rentals[id]
	if !ok {
		return repository.ErrRentalNotFound
	}
	if !rental.IsOpen() {
		return repository.ErrRentalClosed
	}
	rental.ReturnDate = &returnedAt
	rental.FineValue = fine

	return nil
}

func (r memRentalRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rentals[id]; !ok {
		return repository.ErrRentalNotFound
	}
	delete(r.s.rentals, id)

	return nil
}

// --- transactions ---

// memTxManager runs fn against the shared store. It does not roll back;
// tests that need rollback semantics use the sqlite-backed repositories.
type memTxManager struct{ s *memStore }

func (m memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(memFactory(m))
}

type memFactory struct{ s *memStore }

func (f memFactory) NewUserRepository() repository.UserRepository     { return memUserRepo(f) }
func (f memFactory) NewClientRepository() repository.ClientRepository { return memClientRepo(f) }
func (f memFactory) NewAuthorRepository() repository.AuthorRepository { return memAuthorRepo(f) }
func (f memFactory) NewBookRepository() repository.BookRepository     { return memBookRepo(f) }
func (f memFactory) NewCopyRepository() repository.CopyRepository     { return memCopyRepo(f) }
func (f memFactory) NewRentalRepository() repository.RentalRepository { return memRentalRepo(f) }

// --- collaborators ---

// plainHasher stores passwords with a prefix so tests avoid bcrypt cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Check(password, hash string) bool     { return hash == "hashed:"+password }

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) Issue(userID uuid.UUID, roles []string) (string, error) {
	args := m.Called(userID, roles)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) IssueWithTTL(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	args := m.Called(userID, roles, ttl)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Verify(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *mockTokenService) TTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// countingMetrics records ledger events for assertions.
type countingMetrics struct {
	mu        sync.Mutex
	created   int
	finished  int
	fined     int
	conflicts int
	logins    map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{logins: make(map[string]int)}
}

func (m *countingMetrics) RentalCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) RentalFinished(fined bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	if fined {
		m.fined++
	}
}

func (m *countingMetrics) RentalConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *countingMetrics) LoginAttempt(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[outcome]++
}

func (m *countingMetrics) ObserveRequest(string, string, int, time.Duration) {}

type stubLabels struct{}

func (stubLabels) CopyLabel(barCode string) ([]byte, error) {
	return []byte("png:" + barCode), nil
}
