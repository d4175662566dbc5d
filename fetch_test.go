package linkpreview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcherParsesEnvelope(t *testing.T) {
	target := "https://example.com/article?id=42&ref=feed"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != target {
			t.Errorf("endpoint received url %q, want %q", got, target)
		}
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"title": "An Article",
				"description": "Worth reading",
				"image": {"url": "https://example.com/og.png"},
				"logo": {"url": "https://example.com/favicon.ico"}
			}
		}`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client()}
	meta, err := f.Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := Metadata{
		Title:       "An Article",
		Description: "Worth reading",
		Image:       "https://example.com/og.png",
		Favicon:     "https://example.com/favicon.ico",
	}
	if meta != want {
		t.Fatalf("got %+v, want %+v", meta, want)
	}
}

func TestHTTPFetcherRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client()}
	_, err := f.Fetch(context.Background(), "https://example.com/x")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a FetchError, got %v", err)
	}
	if fe.Status != http.StatusBadGateway {
		t.Fatalf("status %d, want %d", fe.Status, http.StatusBadGateway)
	}
}

func TestHTTPFetcherRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client()}
	if _, err := f.Fetch(context.Background(), "https://example.com/x"); err == nil {
		t.Fatalf("truncated body should be an error")
	}
}

func TestHTTPFetcherRejectsFailEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "fail", "data": {}}`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client()}
	_, err := f.Fetch(context.Background(), "https://example.com/x")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a FetchError, got %v", err)
	}
	if fe.Status != 0 {
		t.Fatalf("fail envelope arrives with HTTP 200, status should stay 0, got %d", fe.Status)
	}
}

func TestHTTPFetcherHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client()}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, "https://example.com/x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error through the chain, got %v", err)
	}
}

func TestHTTPFetcherCapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {"title": "padded`))
		for i := 0; i < 1024; i++ {
			w.Write([]byte(" pad"))
		}
		w.Write([]byte(`"}}`))
	}))
	defer srv.Close()

	// cap cuts the envelope mid-JSON: the truncated read must surface as an
	// error, not as partially-parsed metadata
	f := &HTTPFetcher{Endpoint: srv.URL, Client: srv.Client(), MaxBody: 64}
	if _, err := f.Fetch(context.Background(), "https://example.com/x"); err == nil {
		t.Fatalf("capped body should fail to parse")
	}
}
