package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/pkg/requestcontext"
)

func TestMiddleware_AssignsFreshID(t *testing.T) {
	var inContext string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = requestcontext.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := rec.Header().Get(Header)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, inContext)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestMiddleware_PreservesInboundID(t *testing.T) {
	var inContext string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = requestcontext.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "trace-me-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "trace-me-123", inContext)
	assert.Equal(t, "trace-me-123", rec.Header().Get(Header))
}
