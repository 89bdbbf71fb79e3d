// Package dto defines the request and response shapes of the v1 API.
package dto

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URL is the thread to analyze, in any common spelling.
	URL string `json:"url"`

	// APIKey optionally supplies the caller's own LLM credential. Results
	// produced with it bypass the shared cache.
	APIKey string `json:"api_key,omitempty"`
}

// ScanRequest is the body of POST /api/v1/scan-subreddit.
type ScanRequest struct {
	// Subreddit accepts "name", "r/name", or a form with stray slashes.
	Subreddit string `json:"subreddit"`
}

// ShareResponse is the body returned by POST /api/v1/share.
type ShareResponse struct {
	ShareID  string `json:"share_id"`
	ShareURL string `json:"share_url"`
}
