package chiext

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level(http.StatusOK))
	assert.Equal(t, slog.LevelDebug, Level(http.StatusNoContent))
	assert.Equal(t, slog.LevelWarn, Level(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, Level(http.StatusServiceUnavailable))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Logger(logger))
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="GET /missing"`)
	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "request=")
}
