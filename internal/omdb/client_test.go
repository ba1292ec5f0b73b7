package omdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviemeta/internal/omdb"
	"moviemeta/internal/services"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := omdb.New("", "https://example.com/")
	if err == nil {
		t.Fatal("expected error when api key missing")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestLookupFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "key" {
			t.Errorf("expected apikey query parameter, got %q", r.URL.RawQuery)
		}
		if q.Get("t") != "Ocean's Eleven" {
			t.Errorf("expected decoded title, got %q", q.Get("t"))
		}
		if q.Get("type") != "movie" {
			t.Errorf("expected type=movie, got %q", q.Get("type"))
		}
		if _, ok := q["y"]; ok {
			t.Errorf("expected no year filter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Title":"Ocean's Eleven","Year":"2001","Ratings":[{"Source":"Internet Movie Database","Value":"7.7/10"}],"imdbID":"tt0240772","Response":"True"}`))
	}))
	t.Cleanup(server.Close)

	client, err := omdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := client.Lookup(context.Background(), "Ocean's Eleven", "")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if !res.Found || res.Movie.Title != "Ocean's Eleven" || res.Movie.Year != "2001" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Movie.IMDbID != "tt0240772" || len(res.Movie.Ratings) != 1 {
		t.Fatalf("expected full payload, got %+v", res.Movie)
	}
}

func TestLookupPassesYearAndMediaType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("y") != "2010" {
			t.Errorf("expected y=2010, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("type") != "series" {
			t.Errorf("expected type=series, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"Title":"Inception","Year":"2010","Response":"True"}`))
	}))
	t.Cleanup(server.Close)

	client, err := omdb.New("key", server.URL, omdb.WithMediaType("series"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Lookup(context.Background(), "Inception", " 2010 "); err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	t.Cleanup(server.Close)

	client, err := omdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := client.Lookup(context.Background(), "Not A Real Movie Title Xyzzy", "")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if res.Found || res.Message != "Movie not found!" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLookupInvalidKeyIsConfigurationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	}))
	t.Cleanup(server.Close)

	client, err := omdb.New("bad", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.Lookup(context.Background(), "Heat", "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLookupServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	t.Cleanup(server.Close)

	client, err := omdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.Lookup(context.Background(), "Heat", "")
	if err == nil {
		t.Fatal("expected error for non-JSON body")
	}
	if services.IsFatal(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestLookupHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := omdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Lookup(ctx, "Heat", "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
