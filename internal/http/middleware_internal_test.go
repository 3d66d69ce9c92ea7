package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tableq/tableq/internal/observability"
)

func TestLoggerMiddleware_StashesRequestLogger(t *testing.T) {
	logger := observability.NewLogger()

	var got observability.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = loggerFrom(r.Context())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/queue", nil)
	LoggerMiddleware(logger)(inner).ServeHTTP(rec, req)

	require.NotNil(t, got, "handlers read the request-scoped logger back out")
}

func TestLoggerFrom_MissingMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/queue", nil)
	assert.Nil(t, loggerFrom(req.Context()))
}
