package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	deliverycontext "librarian/internal/delivery/context"
	domainerrors "librarian/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	mu   sync.Mutex
	seen []observation
}

func (*recordingMetrics) RentalCreated()      {}
func (*recordingMetrics) RentalFinished(bool) {}
func (*recordingMetrics) RentalConflict()     {}
func (*recordingMetrics) LoginAttempt(string) {}

func (r *recordingMetrics) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method, route, status})
}

func TestRequestIDMiddleware_Process(t *testing.T) {
	m := NewRequestIDMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "client id kept", incoming: "abc-123", keep: true},
		{name: "missing id minted", incoming: ""},
		{name: "control characters rejected", incoming: "abc\nforged=1"},
		{name: "oversized id rejected", incoming: strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var ctxID string
			err := m.Process(func(c echo.Context) error {
				ctxID = deliverycontext.RequestIDFrom(c.Request().Context())
				assert.NotNil(t, deliverycontext.Logger(c.Request().Context(), nil))

				return nil
			})(c)
			require.NoError(t, err)

			got := rec.Header().Get(deliverycontext.HeaderRequestID)
			assert.Equal(t, got, ctxID)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestMetricsMiddleware_Handle(t *testing.T) {
	rec := &recordingMetrics{}
	e := echo.New()
	e.Use(NewMetricsMiddleware(rec, "/metrics").Handle)
	e.GET("/api/v1/rentals/:id", func(c echo.Context) error {
		if c.Param("id") == "404" {
			return domainerrors.ErrRentalNotFound
		}

		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/api/v1/rentals/1", "/api/v1/rentals/404", "/metrics"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/api/v1/rentals/:id", http.StatusOK}, rec.seen[0])
	assert.Equal(t, observation{http.MethodGet, "/api/v1/rentals/:id", http.StatusNotFound}, rec.seen[1])
}
