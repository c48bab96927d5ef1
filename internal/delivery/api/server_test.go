package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"librarian/config"
	"librarian/internal/delivery/api/middleware"
	"librarian/internal/delivery/api/response"
	"librarian/internal/delivery/api/router"
	"librarian/internal/delivery/api/router/handler"
	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/service"
	"librarian/internal/infra/auth"
	"librarian/internal/infra/metrics"
	"librarian/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// The usecase mocks embed the interface so each test only stubs what it calls.

type mockUserUsecase struct {
	usecase.UserUsecase
	mock.Mock
}

func (m *mockUserUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.LoginOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) EditUser(ctx context.Context, id string, input *usecase.EditUserInput) (*entity.Profile, error) {
	args := m.Called(ctx, id, input)
	out, _ := args.Get(0).(*entity.Profile)

	return out, args.Error(1)
}

func (m *mockUserUsecase) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockRentalUsecase struct {
	usecase.RentalUsecase
	mock.Mock
}

func (m *mockRentalUsecase) CreateRental(ctx context.Context, input *usecase.CreateRentalInput) (*entity.Rental, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.Rental)

	return out, args.Error(1)
}

func (m *mockRentalUsecase) FinishRental(ctx context.Context, id string, input *usecase.FinishRentalInput) (*entity.Rental, error) {
	args := m.Called(ctx, id, input)
	out, _ := args.Get(0).(*entity.Rental)

	return out, args.Error(1)
}

type mockCatalogUsecase struct {
	usecase.CatalogUsecase
	mock.Mock
}

func (m *mockCatalogUsecase) CopyLabel(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).([]byte)

	return out, args.Error(1)
}

type testServer struct {
	echo    *echo.Echo
	tokens  service.TokenService
	users   *mockUserUsecase
	rentals *mockRentalUsecase
	catalog *mockCatalogUsecase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Access = "test-secret"
	cfg.Metrics = &config.MetricsConfig{Enabled: true, Path: "/metrics"}

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	ts := &testServer{
		tokens:  tokens,
		users:   &mockUserUsecase{},
		rentals: &mockRentalUsecase{},
		catalog: &mockCatalogUsecase{},
	}
	t.Cleanup(func() {
		ts.users.AssertExpectations(t)
		ts.rentals.AssertExpectations(t)
		ts.catalog.AssertExpectations(t)
	})

	ts.echo = newEcho(ServerParams{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: m,
		RouterParams: router.RouterParams{
			UserHandler:    handler.NewUserHandler(ts.users, logger),
			RentalHandler:  handler.NewRentalHandler(ts.rentals, logger),
			ClientHandler:  handler.NewClientHandler(nil),
			CatalogHandler: handler.NewCatalogHandler(ts.catalog),
			AuthMiddleware: middleware.NewAuthMiddleware(tokens),
			Metrics:        m,
			Config:         cfg,
		},
	})

	return ts
}

func (ts *testServer) token(t *testing.T, role entity.Role) string {
	t.Helper()

	return ts.tokenFor(t, uuid.New(), role)
}

func (ts *testServer) tokenFor(t *testing.T, userID uuid.UUID, role entity.Role) string {
	t.Helper()
	token, err := ts.tokens.Issue(userID, []string{role.String()})
	require.NoError(t, err)

	return token
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body response.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, response.TypeSuccess, body.Type)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_ProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/rentals", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, rec).Code)

	rec = ts.do(http.MethodGet, "/api/v1/rentals", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Login(t *testing.T) {
	ts := newTestServer(t)
	profile := &entity.Profile{ID: uuid.New(), Email: "ana@example.com", Role: entity.RoleLibrarian}
	ts.users.On("Login", mock.Anything, &usecase.LoginInput{Email: "ana@example.com", Password: "Valid123!"}).
		Return(&usecase.LoginOutput{Token: "tkn", ExpiresIn: 3600, User: profile}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/v1/users/login", "", `{"email":"ana@example.com","password":"Valid123!"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Type      string         `json:"type"`
		Token     string         `json:"token"`
		TokenType string         `json:"token_type"`
		ExpiresIn int64          `json:"expires_in"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, response.TypeSuccess, body.Type)
	assert.Equal(t, "tkn", body.Token)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(3600), body.ExpiresIn)
	assert.Equal(t, "ana@example.com", body.Data["email"])
	assert.NotContains(t, body.Data, "token")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestServer_Login_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/users/login", "", `{"email":"ana@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, "password is required", body.Message)
}

func TestServer_CreateRental(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, entity.RoleLibrarian)
	input := &usecase.CreateRentalInput{ClientCPF: "111", CopyID: 1, RentalDate: "2024-01-01", DueDate: "2024-01-15"}
	payload := `{"clientCpf":"111","copyId":1,"rental_date":"2024-01-01","due_date":"2024-01-15"}`

	ts.rentals.On("CreateRental", mock.Anything, input).
		Return(&entity.Rental{ID: 9, ClientCPF: "111", CopyID: 1}, nil).Once()
	ts.rentals.On("CreateRental", mock.Anything, input).
		Return(nil, domainerrors.ErrCopyAlreadyRented).Once()

	rec := ts.do(http.MethodPost, "/api/v1/rentals/register", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"return_date":null`)
	assert.Contains(t, rec.Body.String(), `"clientCpf":"111"`)
	assert.Contains(t, rec.Body.String(), `"copyId":1`)

	rec = ts.do(http.MethodPost, "/api/v1/rentals/register", token, payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, response.TypeError, body.Type)
	assert.Equal(t, "copy already rented", body.Message)
}

func TestServer_FinishRental_FineValue(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, entity.RoleLibrarian)

	ts.rentals.On("FinishRental", mock.Anything, "9", mock.MatchedBy(func(in *usecase.FinishRentalInput) bool {
		return in.FineValue != nil && in.FineValue.String() == "5"
	})).Return(&entity.Rental{ID: 9}, nil).Once()

	rec := ts.do(http.MethodPut, "/api/v1/rentals/9/finish", token, `{"fine_value":5.0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_EditUser_RoleChangeNeedsAdmin(t *testing.T) {
	ts := newTestServer(t)
	target := uuid.NewString()

	rec := ts.do(http.MethodPut, "/api/v1/users/"+target, ts.token(t, entity.RoleLibrarian), `{"role":"admin"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	ts.users.On("EditUser", mock.Anything, target, mock.MatchedBy(func(in *usecase.EditUserInput) bool {
		return in.Role != nil && *in.Role == entity.RoleAdmin
	})).Return(&entity.Profile{Role: entity.RoleAdmin}, nil).Once()

	rec = ts.do(http.MethodPut, "/api/v1/users/"+target, ts.token(t, entity.RoleAdmin), `{"role":"admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_EditUser_OtherUserNeedsAdmin(t *testing.T) {
	ts := newTestServer(t)
	target := uuid.NewString()

	for _, payload := range []string{`{"password":"Hijacked1!"}`, `{"email":"mine@example.com"}`, `{"name":"x"}`} {
		rec := ts.do(http.MethodPut, "/api/v1/users/"+target, ts.token(t, entity.RoleLibrarian), payload)
		require.Equal(t, http.StatusForbidden, rec.Code, payload)
		assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
	}
	ts.users.AssertNotCalled(t, "EditUser", mock.Anything, mock.Anything, mock.Anything)

	ts.users.On("EditUser", mock.Anything, target, mock.Anything).
		Return(&entity.Profile{}, nil).Once()
	rec := ts.do(http.MethodPut, "/api/v1/users/"+target, ts.token(t, entity.RoleAdmin), `{"password":"NewPass1!"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_EditUser_Self(t *testing.T) {
	ts := newTestServer(t)
	self := uuid.New()
	path := strings.ToUpper(self.String())

	ts.users.On("EditUser", mock.Anything, path, mock.MatchedBy(func(in *usecase.EditUserInput) bool {
		return in.Password != nil && in.Role == nil
	})).Return(&entity.Profile{ID: self}, nil).Once()

	rec := ts.do(http.MethodPut, "/api/v1/users/"+path, ts.tokenFor(t, self, entity.RoleLibrarian), `{"password":"NewPass1!"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPut, "/api/v1/users/not-a-uuid", ts.tokenFor(t, self, entity.RoleLibrarian), `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", decodeError(t, rec).Code)
}

func TestServer_DeleteUser_SelfOrAdmin(t *testing.T) {
	ts := newTestServer(t)
	self := uuid.New()
	path := strings.ToUpper(self.String())

	ts.users.On("DeleteUser", mock.Anything, path).Return(nil).Once()
	rec := ts.do(http.MethodDelete, "/api/v1/users/"+path, ts.tokenFor(t, self, entity.RoleLibrarian), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	other := uuid.NewString()
	rec = ts.do(http.MethodDelete, "/api/v1/users/"+other, ts.tokenFor(t, self, entity.RoleLibrarian), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.users.On("DeleteUser", mock.Anything, other).Return(nil).Once()
	rec = ts.do(http.MethodDelete, "/api/v1/users/"+other, ts.token(t, entity.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CopyLabel(t *testing.T) {
	ts := newTestServer(t)
	ts.catalog.On("CopyLabel", mock.Anything, "3").Return([]byte("\x89PNG"), nil).Once()

	rec := ts.do(http.MethodGet, "/api/v1/copies/3/label", ts.token(t, entity.RoleLibrarian), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/health", "", "")

	rec := ts.do(http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `librarian_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestServer_ExpiredToken(t *testing.T) {
	ts := newTestServer(t)
	expired, err := ts.tokens.IssueWithTTL(uuid.New(), []string{"librarian"}, -time.Minute)
	require.NoError(t, err)

	rec := ts.do(http.MethodGet, "/api/v1/rentals", expired, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
