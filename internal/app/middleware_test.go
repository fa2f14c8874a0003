package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/shared"
	_ "github.com/quillbooks/quillbooks/testing"
)

func newIdentityHandler(t *testing.T, captured *shared.Identity) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := shared.IdentityFromContext(r.Context())
		require.True(t, ok)
		*captured = id
		w.WriteHeader(http.StatusOK)
	})
	return IdentityMiddleware(logger)(next)
}

func TestIdentityMiddleware(t *testing.T) {
	var got shared.Identity
	handler := newIdentityHandler(t, &got)

	req := httptest.NewRequest(http.MethodGet, "/ledger/accounts", nil)
	req.Header.Set(HeaderTenantID, "42")
	req.Header.Set(HeaderActorID, "7")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 42, got.TenantID)
	assert.EqualValues(t, 7, got.ActorID)
	assert.False(t, got.CanReopen)
}

func TestIdentityMiddlewareReopenFlag(t *testing.T) {
	var got shared.Identity
	handler := newIdentityHandler(t, &got)

	req := httptest.NewRequest(http.MethodPost, "/ledger/periods/1/reopen", nil)
	req.Header.Set(HeaderTenantID, "42")
	req.Header.Set(HeaderActorID, "7")
	req.Header.Set(HeaderPeriodReopen, "true")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, got.CanReopen)
}

func TestIdentityMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no headers", headers: nil},
		{name: "missing actor", headers: map[string]string{HeaderTenantID: "42"}},
		{name: "non numeric tenant", headers: map[string]string{HeaderTenantID: "acme", HeaderActorID: "7"}},
		{name: "zero tenant", headers: map[string]string{HeaderTenantID: "0", HeaderActorID: "7"}},
		{name: "negative actor", headers: map[string]string{HeaderTenantID: "42", HeaderActorID: "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got shared.Identity
			handler := newIdentityHandler(t, &got)

			req := httptest.NewRequest(http.MethodGet, "/ledger/accounts", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}
