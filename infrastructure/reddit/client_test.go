package reddit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threadlens/threadlens/infrastructure/reddit"
)

func TestClient_FetchThread(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(threadPayload))
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	th, err := client.FetchThread(context.Background(), "https://www.reddit.com/r/SaaS/comments/abc123/t.json")
	if err != nil {
		t.Fatalf("FetchThread: %v", err)
	}

	if gotPath != "/r/SaaS/comments/abc123/t.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAgent != reddit.DefaultUserAgent {
		t.Errorf("user agent = %q, want %q", gotAgent, reddit.DefaultUserAgent)
	}
	if th.CommentCount() != 2 {
		t.Errorf("comments = %d, want 2", th.CommentCount())
	}
}

func TestClient_FetchThread_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	_, err := client.FetchThread(context.Background(), "https://www.reddit.com/r/SaaS/comments/gone/t.json")
	if !errors.Is(err, reddit.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	var fetchErr *reddit.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %T, want *FetchError", err)
	}
	if fetchErr.StatusCode() != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.StatusCode())
	}
}

func TestClient_FetchThread_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	_, err := client.FetchThread(context.Background(), "https://www.reddit.com/r/SaaS/comments/x/t.json")
	var fetchErr *reddit.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %T, want *FetchError", err)
	}
	if fetchErr.StatusCode() != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", fetchErr.StatusCode())
	}
}

func TestClient_FetchThread_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchThread(ctx, "https://www.reddit.com/r/SaaS/comments/x/t.json")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_FetchHot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/SaaS/hot.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "15" {
			t.Errorf("limit = %q, want 15", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`{"kind": "Listing", "data": {"children": [
			{"kind": "t3", "data": {"title": "A", "permalink": "/r/SaaS/comments/a/x/", "score": 3, "num_comments": 9}}
		]}}`))
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	subs, err := client.FetchHot(context.Background(), "SaaS", 15)
	if err != nil {
		t.Fatalf("FetchHot: %v", err)
	}
	if len(subs) != 1 || subs[0].Title != "A" {
		t.Fatalf("submissions = %+v", subs)
	}
}

func TestClient_FetchThread_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	client := reddit.NewClient(reddit.WithBaseURL(srv.URL))

	_, err := client.FetchThread(context.Background(), "https://www.reddit.com/r/SaaS/comments/x/t.json")
	if !errors.Is(err, reddit.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}
