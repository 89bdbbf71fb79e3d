package thread

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// URL validation errors.
var (
	// ErrNotRedditURL indicates the submitted URL does not point at reddit.
	ErrNotRedditURL = errors.New("not a reddit URL")

	// ErrNotThreadURL indicates the URL points at a subreddit or user page
	// rather than a specific thread.
	ErrNotThreadURL = errors.New("not a thread URL")
)

var hostPattern = regexp.MustCompile(`^https?://(old\.|www\.)?reddit\.com`)

// NormalizeURL canonicalizes a submitted thread URL into the JSON endpoint
// form used for fetching. Query parameters, fragments and trailing slashes
// are stripped, old./www./bare hosts collapse to www.reddit.com, and a .json
// suffix is appended. Two URLs naming the same thread normalize identically.
func NormalizeURL(rawURL string) (string, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return "", fmt.Errorf("%w: empty URL", ErrNotRedditURL)
	}
	if !strings.Contains(url, "reddit.com") {
		return "", ErrNotRedditURL
	}

	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimRight(url, "/")

	if !hostPattern.MatchString(url) {
		return "", ErrNotRedditURL
	}
	url = hostPattern.ReplaceAllString(url, "https://www.reddit.com")

	if !IsThreadURL(url) {
		return "", ErrNotThreadURL
	}

	if !strings.HasSuffix(url, ".json") {
		url += ".json"
	}
	return url, nil
}

// IsThreadURL reports whether the URL names a specific thread rather than a
// subreddit listing. Thread permalinks always contain a /comments/ segment.
func IsThreadURL(url string) bool {
	return strings.Contains(url, "/comments/")
}

// CacheKey derives the result-cache key for a normalized thread URL. Because
// normalization collapses host and formatting variants, every spelling of the
// same thread maps to one key, and different threads cannot collide short of
// an MD5 collision.
func CacheKey(normalizedURL string) string {
	sum := md5.Sum([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])
}
