package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRequestID() (http.Handler, *string) {
	var captured string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &captured
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	handler, captured := captureRequestID()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, *captured)
	assert.Equal(t, *captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_ReusesWellFormedID(t *testing.T) {
	t.Parallel()

	handler, captured := captureRequestID()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "producer-batch-42")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "producer-batch-42", *captured)
	assert.Equal(t, "producer-batch-42", rec.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesMalformedID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headerID string
		wantNew  bool
	}{
		{name: "alphanumeric with separators", headerID: "abc-123_DEF", wantNew: false},
		{name: "max length", headerID: strings.Repeat("a", 128), wantNew: false},
		{name: "over max length", headerID: strings.Repeat("a", 129), wantNew: true},
		{name: "newline log forging", headerID: "fake-id\nlevel=ERROR forged", wantNew: true},
		{name: "carriage return", headerID: "fake-id\rforged", wantNew: true},
		{name: "spaces", headerID: "id with spaces", wantNew: true},
		{name: "markup", headerID: "id<script>alert(1)</script>", wantNew: true},
		{name: "empty", headerID: "", wantNew: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, captured := captureRequestID()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.headerID != "" {
				req.Header.Set("X-Request-ID", tt.headerID)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, *captured)
			if tt.wantNew {
				assert.NotEqual(t, tt.headerID, *captured)
			} else {
				assert.Equal(t, tt.headerID, *captured)
			}
		})
	}
}

func TestRequestIDFromContext_EmptyWithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
