package thread

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Formatting bounds. Individual comments are clipped so a single wall of
// text cannot crowd everything else out of the analysis input.
const (
	DefaultCommentClip = 500
)

// Format renders the thread as an ordered, depth-indented text blob suitable
// for analysis input. The post comes first as a header block; each comment
// follows on its own line, indented two spaces per depth level and annotated
// with its score.
func Format(t Thread) string {
	return FormatClipped(t, DefaultCommentClip)
}

// FormatClipped is Format with an explicit per-comment length bound.
// A bound of zero or less disables clipping.
func FormatClipped(t Thread, commentClip int) string {
	var b strings.Builder

	post := t.Post()
	fmt.Fprintf(&b, "=== POST (r/%s) ===\n", post.Subreddit())
	fmt.Fprintf(&b, "Title: %s\n", post.Title())
	if post.Body() != "" {
		fmt.Fprintf(&b, "Body: %s\n", post.Body())
	}
	fmt.Fprintf(&b, "Score: %d | Comments: %d\n\n", post.Score(), post.NumComments())

	for _, c := range t.Comments() {
		indent := strings.Repeat("  ", c.Depth())
		fmt.Fprintf(&b, "%s[Score: %d] %s\n", indent, c.Score(), clip(c.Body(), commentClip))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Clip bounds s to at most n bytes without splitting a UTF-8 sequence. Used
// for both per-comment clipping and bounding the whole formatted blob inside
// the prompt.
func Clip(s string, n int) string {
	return clip(s, n)
}

func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	// Back off to the nearest rune boundary so the cut never leaves a
	// partial multi-byte sequence behind.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
