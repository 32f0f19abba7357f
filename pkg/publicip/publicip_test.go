package publicip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolvePrimary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.7\n"))
	}))
	defer srv.Close()

	r := &Resolver{Endpoints: []string{srv.URL}}
	ip, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ip != "203.0.113.7" {
		t.Errorf("expected 203.0.113.7, got %s", ip)
	}
}

func TestResolveFallsBack(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("198.51.100.4"))
	}))
	defer good.Close()

	r := &Resolver{Endpoints: []string{bad.URL, good.URL}}
	ip, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ip != "198.51.100.4" {
		t.Errorf("expected fallback answer, got %s", ip)
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an ip</html>"))
	}))
	defer srv.Close()

	r := &Resolver{Endpoints: []string{srv.URL}}
	if _, err := r.Resolve(context.Background()); err == nil {
		t.Fatal("expected an error for a non-IP response")
	}
}

func TestResolveAllEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := &Resolver{Endpoints: []string{srv.URL, srv.URL}}
	if _, err := r.Resolve(context.Background()); err == nil {
		t.Fatal("expected an error when every endpoint fails")
	}
}
