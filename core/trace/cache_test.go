package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestSeries_HTTPFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("# trace\n0.5,0.1\n1.0,0.2\n"))
	}))
	defer srv.Close()

	c := NewCache(srv.Client())
	ctx := context.Background()

	s0, err := c.Series(ctx, srv.URL, 0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(s0) != 2 || s0[0] != 0.5 || s0[1] != 1.0 {
		t.Fatalf("column 0 = %v, want [0.5 1.0]", s0)
	}

	s1, err := c.Series(ctx, srv.URL, 1)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if s1[0] != 0.1 || s1[1] != 0.2 {
		t.Fatalf("column 1 = %v, want [0.1 0.2]", s1)
	}

	if hits.Load() != 1 {
		t.Fatalf("source fetched %d times, want 1", hits.Load())
	}
}

func TestSeries_ReturnsFreshSlices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0.5\n"))
	}))
	defer srv.Close()

	c := NewCache(srv.Client())
	a, err := c.Series(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	a[0] = 99
	b, _ := c.Series(context.Background(), srv.URL, 0)
	if b[0] != 0.5 {
		t.Fatal("cached data must not alias returned slices")
	}
}

func TestSeries_HTTPErrorFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCache(srv.Client())
	if _, err := c.Series(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestSeries_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte("0.3\n-0.1\n0.7\n"), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}

	c := NewCache(nil)
	s, err := c.Series(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	// negatives are clamped on load
	if len(s) != 3 || s[1] != 0 {
		t.Fatalf("series = %v, want negative clamped to 0", s)
	}
}

func TestSeries_ColumnOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte("0.3\n"), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	c := NewCache(nil)
	if _, err := c.Series(context.Background(), path, 2); err == nil {
		t.Fatal("expected error for column out of range")
	}
}

func TestSeries_MissingFile(t *testing.T) {
	c := NewCache(nil)
	if _, err := c.Series(context.Background(), "/nonexistent/trace.csv", 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSeries_EmptyTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	c := NewCache(nil)
	if _, err := c.Series(context.Background(), path, 0); err == nil {
		t.Fatal("expected error for empty trace")
	}
}
