package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/application/service"
	"github.com/threadlens/threadlens/infrastructure/api"
	"github.com/threadlens/threadlens/infrastructure/provider"
	"github.com/threadlens/threadlens/infrastructure/reddit"
)

const threadDoc = `[
	{
		"kind": "Listing",
		"data": {"children": [
			{"kind": "t3", "data": {
				"title": "Anyone else struggling with invoices?",
				"selftext": "I spend hours every week.",
				"author": "founder42",
				"score": 120,
				"url": "https://www.reddit.com/r/SaaS/comments/abc123/t",
				"num_comments": 1,
				"subreddit": "SaaS"
			}}
		]}
	},
	{
		"kind": "Listing",
		"data": {"children": [
			{"kind": "t1", "data": {
				"body": "I'd pay $50/mo for a fix.",
				"author": "bob",
				"score": 30,
				"replies": ""
			}}
		]}
	}
]`

const hotDoc = `{
	"kind": "Listing",
	"data": {"children": [
		{"kind": "t3", "data": {
			"title": "Pricing feedback wanted",
			"permalink": "/r/startups/comments/x/pricing/",
			"score": 40,
			"num_comments": 25,
			"stickied": false,
			"created_utc": 1700000000
		}}
	]}
}`

const analysisDoc = `{
	"summary": "Founders struggle with invoicing.",
	"pain_points": [{"pain": "Manual reconciliation", "severity": "high", "quotes": ["hours every week"]}],
	"golden_quotes": ["I'd pay $50/mo for a fix."]
}`

// cannedGenerator returns a fixed analysis for every completion.
type cannedGenerator struct {
	content string
}

func (g *cannedGenerator) ChatCompletion(_ context.Context, _ provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.NewChatCompletionResponse(g.content, "stop", provider.NewUsage(1, 1, 2)), nil
}

// failingGenerator simulates an exhausted LLM quota.
type failingGenerator struct{}

func (failingGenerator) ChatCompletion(_ context.Context, _ provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.ChatCompletionResponse{}, provider.NewProviderError("chat_completion", http.StatusTooManyRequests, "quota exceeded", nil)
}

// newUpstream serves canned reddit payloads.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/r/SaaS/comments/abc123/"):
			_, _ = io.WriteString(w, threadDoc)
		case strings.HasPrefix(r.URL.Path, "/r/startups/hot.json"):
			_, _ = io.WriteString(w, hotDoc)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestHandler(t *testing.T, opts ...threadlens.Option) http.Handler {
	t.Helper()

	upstream := newUpstream(t)
	base := []threadlens.Option{
		threadlens.WithRedditClient(reddit.NewClient(reddit.WithBaseURL(upstream.URL))),
		threadlens.WithTextProvider(&cannedGenerator{content: analysisDoc}),
		threadlens.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	client, err := threadlens.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return api.NewAPIServer(client, []string{"*"}).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/abc123/invoices/",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Analysis == nil || result.Analysis.Summary == "" {
		t.Errorf("result missing analysis: %s", rec.Body.String())
	}
	if result.Subreddit != "SaaS" || result.CommentCount != 1 {
		t.Errorf("metadata = %q, %d", result.Subreddit, result.CommentCount)
	}
}

func TestAnalyzeEndpoint_MissingURL(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpoint_BadURL(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://example.com/not-reddit",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpoint_ThreadNotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/gone404/nothing/",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeEndpoint_AnalysisFailureCarriesRawData(t *testing.T) {
	handler := newTestHandler(t, threadlens.WithTextProvider(failingGenerator{}))

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/abc123/invoices/",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var body struct {
		Error   string `json:"error"`
		RawData string `json:"raw_data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error == "" {
		t.Error("502 body should carry the error")
	}
	if !strings.Contains(body.RawData, "invoices") {
		t.Errorf("502 body should carry the formatted thread, got %q", body.RawData)
	}
}

func TestAnalyzeEndpoint_PassthroughWithoutProvider(t *testing.T) {
	upstream := newUpstream(t)
	client, err := threadlens.New(
		threadlens.WithRedditClient(reddit.NewClient(reddit.WithBaseURL(upstream.URL))),
		threadlens.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	handler := api.NewAPIServer(client, []string{"*"}).Handler()

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/abc123/invoices/",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !result.NoCredential || result.Prompt == "" {
		t.Errorf("expected passthrough payload, got %s", rec.Body.String())
	}
}

func TestScanEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/scan-subreddit", map[string]string{
		"subreddit": "r/startups",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Subreddit != "startups" || len(result.Threads) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestScanEndpoint_MissingSubreddit(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/scan-subreddit", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestShareRoundTrip(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/share", map[string]string{"summary": "worth sharing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ShareID  string `json:"share_id"`
		ShareURL string `json:"share_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.ShareID == "" || created.ShareURL != "/shared/"+created.ShareID {
		t.Fatalf("created = %+v", created)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/share/"+created.ShareID, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)

	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(getRec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["summary"] != "worth sharing" {
		t.Errorf("payload = %v", payload)
	}
}

func TestShareEndpoint_UnknownID(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/share/nope1234", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRateLimiting_AnalyzeAndShareShareQuota(t *testing.T) {
	handler := newTestHandler(t, threadlens.WithRateLimit(time.Minute, 1))

	rec := postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/abc123/invoices/",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	// Second request against the shared quota, via a different endpoint.
	rec = postJSON(t, handler, "/api/v1/share", map[string]string{"x": "y"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("denial should carry Retry-After")
	}
}

func TestRateLimiting_ScanHasOwnQuota(t *testing.T) {
	handler := newTestHandler(t, threadlens.WithRateLimit(time.Minute, 1))

	postJSON(t, handler, "/api/v1/analyze", map[string]string{
		"url": "https://www.reddit.com/r/SaaS/comments/abc123/invoices/",
	})

	rec := postJSON(t, handler, "/api/v1/scan-subreddit", map[string]string{"subreddit": "startups"})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan should not share the analysis quota, got %d", rec.Code)
	}
}

func TestIndexEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info["name"] != "threadlens" {
		t.Errorf("info = %v", info)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
