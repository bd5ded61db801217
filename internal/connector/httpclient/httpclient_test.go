package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`[["Nama"],["Ali"]]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.Get(context.Background(), "/exec", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != `[["Nama"],["Ali"]]` {
		t.Fatalf("unexpected body: %q", resp.Body)
	}
	if resp.ContentType != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", resp.ContentType)
	}
}

func TestGet_BearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token-123")
	if _, err := c.Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-token-123" {
		t.Fatalf("expected 'Bearer secret-token-123', got %q", gotAuth)
	}
}

func TestGet_NoTokenNoAuthHeader(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "").Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasAuth {
		t.Fatal("expected no Authorization header without a token")
	}
}

func TestGet_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	q := make(map[string][]string)
	q["sheet"] = []string{"Lewat"}
	q["format"] = []string{"csv"}
	if _, err := c.Get(context.Background(), "/exec", q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// url.Values.Encode sorts keys alphabetically
	if gotQuery != "format=csv&sheet=Lewat" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestGet_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`Script function not found: doGet`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Get(context.Background(), "/bad", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 404 {
		t.Fatalf("expected status 404, got %d", apiErr.StatusCode)
	}
	if apiErr.Body != `Script function not found: doGet` {
		t.Fatalf("unexpected body: %q", apiErr.Body)
	}
}

func TestGet_APIErrorKeepsMarkupPage(t *testing.T) {
	page := `<html><head><title>Sign in</title></head><body>` + strings.Repeat("x", 1000) + `</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(403)
		w.Write([]byte(page))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Get(context.Background(), "/", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if !apiErr.IsMarkup() {
		t.Fatalf("expected markup reply, content type %q", apiErr.ContentType)
	}
	if string(apiErr.Raw) != page {
		t.Fatalf("expected full body kept, got %d bytes", len(apiErr.Raw))
	}
}

func TestAPIErrorIsMarkup(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (&APIError{ContentType: tt.ct}).IsMarkup(); got != tt.want {
			t.Errorf("IsMarkup(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestGet_APIErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Get(context.Background(), "/", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if len(apiErr.Body) != 512 {
		t.Fatalf("expected body truncated to 512 bytes, got %d", len(apiErr.Body))
	}
}

func TestGet_MaxBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("y", 100)))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "", WithMaxBody(10)).Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Body) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(resp.Body))
	}
}

func TestGet_RateLimit_RetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(429)
			w.Write([]byte(`rate limited`))
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	start := time.Now()
	resp, err := New(srv.URL, "tok").Get(context.Background(), "/", nil)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if elapsed < 900*time.Millisecond {
		t.Fatalf("expected ~1s retry delay, got %v", elapsed)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(503)
			w.Write([]byte(`service unavailable`))
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "tok").Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the retry sleep is interrupted.
	cancel()

	_, err := New(srv.URL, "tok").Get(ctx, "/", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAPIErrorWait(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		attempt int
		want    time.Duration
	}{
		{"first retry", &APIError{StatusCode: 503}, 1, time.Second},
		{"third retry", &APIError{StatusCode: 503}, 3, 4 * time.Second},
		{"retry-after", &APIError{StatusCode: 429, retryAfter: "7"}, 1, 7 * time.Second},
		{"bad retry-after", &APIError{StatusCode: 429, retryAfter: "soon"}, 2, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.wait(tt.attempt); got != tt.want {
				t.Fatalf("wait(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Get(context.Background(), "/", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 *APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}
