package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/threadlens/threadlens/domain/thread"
	"github.com/threadlens/threadlens/infrastructure/reddit"
)

// Scan defaults: how many hot posts to pull and how many candidates to keep.
const (
	DefaultScanFetchLimit  = 15
	DefaultScanResultLimit = 10

	// scanMinComments filters out threads too quiet to analyze.
	scanMinComments = 5

	// scanTitleClip bounds candidate titles in the response.
	scanTitleClip = 100
)

// ErrEmptySubreddit indicates the scan request named no subreddit.
var ErrEmptySubreddit = errors.New("empty subreddit name")

// HotFetcher retrieves a subreddit's hot listing.
type HotFetcher interface {
	FetchHot(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error)
}

// ThreadSummary is one candidate thread surfaced by a scan.
type ThreadSummary struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// ScanResult lists the most engaging analyzable threads in a subreddit.
type ScanResult struct {
	Subreddit string          `json:"subreddit"`
	Threads   []ThreadSummary `json:"threads"`
}

// Scanner finds candidate threads worth analyzing.
type Scanner struct {
	fetcher     HotFetcher
	fetchLimit  int
	resultLimit int
}

// NewScanner creates a Scanner around the given listing fetcher.
func NewScanner(fetcher HotFetcher) *Scanner {
	return &Scanner{
		fetcher:     fetcher,
		fetchLimit:  DefaultScanFetchLimit,
		resultLimit: DefaultScanResultLimit,
	}
}

// Scan fetches the subreddit's hot listing and returns the top candidates,
// ranked by engagement. Stickied posts and threads with too few comments are
// skipped. The subreddit name may be given as "name", "r/name", or with
// stray slashes.
func (s *Scanner) Scan(ctx context.Context, subreddit string) (ScanResult, error) {
	name := CleanSubreddit(subreddit)
	if name == "" {
		return ScanResult{}, ErrEmptySubreddit
	}

	subs, err := s.fetcher.FetchHot(ctx, name, s.fetchLimit)
	if err != nil {
		return ScanResult{}, err
	}

	candidates := make([]ThreadSummary, 0, len(subs))
	for _, sub := range subs {
		if sub.Stickied || sub.NumComments < scanMinComments {
			continue
		}
		candidates = append(candidates, ThreadSummary{
			Title:       thread.Clip(sub.Title, scanTitleClip),
			URL:         "https://reddit.com" + sub.Permalink,
			Score:       sub.Score,
			NumComments: sub.NumComments,
			CreatedUTC:  sub.CreatedUTC,
		})
	}

	// Engagement weighs comment volume, boosted by score.
	sort.SliceStable(candidates, func(i, j int) bool {
		return engagement(candidates[i]) > engagement(candidates[j])
	})

	if len(candidates) > s.resultLimit {
		candidates = candidates[:s.resultLimit]
	}

	return ScanResult{Subreddit: name, Threads: candidates}, nil
}

func engagement(t ThreadSummary) float64 {
	return float64(t.NumComments) * (1 + float64(t.Score)/100)
}

// CleanSubreddit strips the r/ prefix and any slashes from a submitted
// subreddit name.
func CleanSubreddit(s string) string {
	name := strings.TrimSpace(s)
	name = strings.ReplaceAll(name, "r/", "")
	name = strings.ReplaceAll(name, "/", "")
	return name
}
