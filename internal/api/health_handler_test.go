package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Holography7/listkeeper/internal/api"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	t.Run("reachable store", func(t *testing.T) {
		t.Parallel()

		handler := api.NewHealthHandler(fakePinger{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.Check(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"Database":"OK"}`, w.Body.String())
	})

	t.Run("unreachable store", func(t *testing.T) {
		t.Parallel()

		handler := api.NewHealthHandler(fakePinger{err: errors.New("connection refused")})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.Check(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}
