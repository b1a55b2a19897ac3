package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/maxdokukin/haaangry-backend/internal/metrics"
)

func TestMain(m *testing.M) {
	if err := metrics.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSearchNotConfigured(t *testing.T) {
	c := NewClient("")

	_, err := c.Search(context.Background(), "ramen recipe")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSearchFormatsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "test-key" {
			t.Errorf("X-Subscription-Token = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "birria recipe" {
			t.Errorf("q = %q", got)
		}

		w.Write([]byte(`{"web":{"results":[
			{"title":"Best Birria","url":"https://food.example/birria","description":"slow cooked"},
			{"title":"Quick Birria","url":"https://fast.example/birria","description":""}
		]}}`))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.baseURL = server.URL

	got, err := c.Search(context.Background(), "birria recipe")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for _, want := range []string{
		"1. Best Birria",
		"https://food.example/birria",
		"slow cooked",
		"2. Quick Birria",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("result missing %q:\n%s", want, got)
		}
	}
}

func TestSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.baseURL = server.URL

	got, err := c.Search(context.Background(), "xyzzy")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got != "No results found." {
		t.Errorf("Search() = %q", got)
	}
}

func TestFetchRefusesNonHTTP(t *testing.T) {
	c := NewClient("test-key")

	if _, err := c.Fetch(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected refusal for non-http URL")
	}
}

func TestFetchLimitsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, fetchBodyLimit*2))
	}))
	defer server.Close()

	c := NewClient("test-key")

	got, err := c.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != fetchBodyLimit {
		t.Errorf("body length = %d, want %d", len(got), fetchBodyLimit)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient("test-key")

	if _, err := c.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404 page")
	}
}
