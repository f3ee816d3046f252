package srs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/logger"
)

func TestProxy(t *testing.T) {
	t.Run("Forward", testProxyForward)
	t.Run("Unreachable", testProxyUnreachable)
}

// The proxy must pass method, path, query and body through untouched
// and hand the upstream response back verbatim.
func testProxyForward(t *testing.T) {
	t.Parallel()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
			"body":   string(body),
		})
	}))
	defer upstream.Close()

	proxy, err := NewProxy(upstream.URL, logger.Default())
	if err != nil {
		t.Fatalf("proxy init fail: %v", err)
	}

	rq := httptest.NewRequest(http.MethodPost, "/api/v1/streams/?count=5", strings.NewReader(`{"x":1}`))
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, rq)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %v", rec.Code)
	}
	var echo struct {
		Method string `json:"method"`
		Path   string `json:"path"`
		Query  string `json:"query"`
		Body   string `json:"body"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &echo); err != nil {
		t.Fatalf("bad echo: %v", err)
	}
	if echo.Method != http.MethodPost || echo.Path != "/api/v1/streams/" ||
		echo.Query != "count=5" || echo.Body != `{"x":1}` {
		t.Errorf("the request was not forwarded verbatim: %+v", echo)
	}
}

func testProxyUnreachable(t *testing.T) {
	t.Parallel()
	// a freshly closed test server yields a connect-refused address
	dead := httptest.NewServer(http.NotFoundHandler())
	addr := dead.URL
	dead.Close()

	proxy, err := NewProxy(addr, logger.Default())
	if err != nil {
		t.Fatalf("proxy init fail: %v", err)
	}

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summaries", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %v (want 502)", rec.Code)
	}
	var out proxyError
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad error envelope: %v", err)
	}
	if out.Code != -1 || out.Message == "" || out.Error == "" {
		t.Errorf("unexpected error envelope: %+v", out)
	}
}
