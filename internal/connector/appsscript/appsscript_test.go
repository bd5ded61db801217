package appsscript

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/latewatch/internal/connector"
	"github.com/crimson-sun/latewatch/internal/connector/httpclient"
	"github.com/crimson-sun/latewatch/internal/ingest"
)

func TestFetch_Success(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[["Nama"],["Ali"]]`))
	}))
	defer srv.Close()

	c := &Connector{}
	p, err := c.Fetch(context.Background(), connector.ConnectorConfig{
		Endpoint: srv.URL,
		Extra:    map[string]string{"script_id": "AKfy123", "sheet": "Mac"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/macros/s/AKfy123/exec" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery != "sheet=Mac" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if p.Source != "appsscript:AKfy123" || p.ContentType != "application/json" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if p.FetchedAt.IsZero() {
		t.Fatal("expected FetchedAt to be set")
	}
}

func TestFetch_LoginPageIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><title>Sign in</title></html>`))
	}))
	defer srv.Close()

	p, err := (&Connector{}).Fetch(context.Background(), connector.ConnectorConfig{
		Endpoint: srv.URL,
		Extra:    map[string]string{"script_id": "x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", p.ContentType)
	}
}

func TestFetch_ForbiddenLoginPageIsAuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(403)
		w.Write([]byte(`<html><head><title>Sign in</title></head><body>Google Accounts</body></html>`))
	}))
	defer srv.Close()

	p, err := (&Connector{}).Fetch(context.Background(), connector.ConnectorConfig{
		Endpoint: srv.URL,
		Extra:    map[string]string{"script_id": "x"},
	})
	if err != nil {
		t.Fatalf("expected the login page as payload, got %v", err)
	}

	e := ingest.NewDefault(ingest.Options{Location: time.UTC, Clock: time.Now})
	_, err = e.Normalize(p.Body, p.ContentType)
	if !errors.Is(err, ingest.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if errors.Is(err, ingest.ErrTransportFailure) {
		t.Fatal("login page must not be reported as a transport failure")
	}
	if !strings.Contains(err.Error(), "Sign in") {
		t.Fatalf("expected page title in error, got %v", err)
	}
}

func TestFetch_Non2xxIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(403)
		w.Write([]byte(`forbidden`))
	}))
	defer srv.Close()

	_, err := (&Connector{}).Fetch(context.Background(), connector.ConnectorConfig{
		Endpoint: srv.URL,
		Extra:    map[string]string{"script_id": "x"},
	})
	if !errors.Is(err, ingest.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 403 {
		t.Fatalf("expected wrapped *APIError with 403, got %v", err)
	}
}

func TestFetch_MissingScriptID(t *testing.T) {
	_, err := (&Connector{}).Fetch(context.Background(), connector.ConnectorConfig{})
	if err == nil {
		t.Fatal("expected error for missing script_id")
	}
}

func TestFetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Connector{}).Fetch(ctx, connector.ConnectorConfig{
		Endpoint: "http://127.0.0.1:1",
		Extra:    map[string]string{"script_id": "x"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ingest.ErrTransportFailure) {
		t.Fatal("cancellation must not be reported as a transport failure")
	}
}

func TestRegistered(t *testing.T) {
	if _, err := connector.Get("appsscript"); err != nil {
		t.Fatalf("appsscript not registered: %v", err)
	}
}
