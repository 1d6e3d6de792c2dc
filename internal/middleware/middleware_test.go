package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlas-forum/atlas/internal/middleware/ratelimiter"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimit(t *testing.T) {
	handler := RateLimit(ratelimiter.PerMinute(1), MemberOrIP)(http.HandlerFunc(ok))

	send := func(remote string, member *uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		if member != nil {
			req = req.WithContext(WithMemberId(req.Context(), *member))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000", nil))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1001", nil), "same ip, other port")
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000", nil))

	member := uuid.New()
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000", &member), "members have their own bucket")
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.3:1000", &member))

	assert.Equal(t, http.StatusBadRequest, send("not-an-ip", nil))
}

func TestMemberOrIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	id, err := MemberOrIP(req)
	require.NoError(t, err)
	assert.Equal(t, "ip_192.168.1.5", id)
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(true)(http.HandlerFunc(ok)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, apiCSP, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = httptest.NewRecorder()
	SecurityHeaders(false)(http.HandlerFunc(ok)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	var route string
	r.Get("/topics/{forum}/{topic}", func(w http.ResponseWriter, r *http.Request) {
		route = routeLabel(r)
		_, _ = w.Write([]byte("hello"))
		w.WriteHeader(http.StatusTeapot) // ignored, the header is already out
	})
	r.Get("/health", ok)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/topics/{forum}/{topic}", "2xx"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/topics/general/hello", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/topics/{forum}/{topic}", route, "slugs never become labels")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/topics/{forum}/{topic}", "2xx")))

	before = testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/health", "2xx"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, before, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/health", "2xx")), "probes are not measured")
}

func TestRecorderStatusClass(t *testing.T) {
	tests := []struct {
		name   string
		handle func(w http.ResponseWriter)
		class  string
		bytes  int
	}{
		{"nothing written", func(http.ResponseWriter) {}, "2xx", 0},
		{"implicit ok", func(w http.ResponseWriter) { _, _ = w.Write([]byte("abc")) }, "2xx", 3},
		{"not found", func(w http.ResponseWriter) { http.Error(w, "Topic not found", http.StatusNotFound) }, "4xx", len("Topic not found\n")},
		{"first status wins", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.WriteHeader(http.StatusOK)
		}, "5xx", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{ResponseWriter: httptest.NewRecorder()}
			tt.handle(rec)
			assert.Equal(t, tt.class, rec.statusClass())
			assert.Equal(t, tt.bytes, rec.bytes)
		})
	}
}
