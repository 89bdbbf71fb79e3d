package reddit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/threadlens/threadlens/domain/thread"
)

// Reddit thing kinds. A thread payload is an array of two Listings: the
// first holds the t3 post, the second the t1 comment forest.
const (
	kindListing = "Listing"
	kindPost    = "t3"
	kindComment = "t1"
)

// ErrMalformed indicates the upstream payload could not be decoded.
var ErrMalformed = errors.New("malformed reddit payload")

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

type postData struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Stickied    bool    `json:"stickied"`
	CreatedUTC  float64 `json:"created_utc"`
}

type commentData struct {
	Body    string          `json:"body"`
	Author  string          `json:"author"`
	Score   int             `json:"score"`
	Replies json.RawMessage `json:"replies"`
}

// DecodeThread parses a thread JSON payload into a Thread. Comments below
// thread.MaxDepth and bodies reading [deleted] or [removed] are dropped.
func DecodeThread(data []byte) (thread.Thread, error) {
	var things []thing
	if err := json.Unmarshal(data, &things); err != nil {
		// Some error payloads come back as a single object.
		var single thing
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return thread.Thread{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		things = []thing{single}
	}

	var post thread.Post
	var comments []thread.Comment
	for _, th := range things {
		if err := walk(th, 0, &post, &comments); err != nil {
			return thread.Thread{}, err
		}
	}

	t := thread.NewThread(post, comments)
	if t.IsEmpty() {
		return thread.Thread{}, fmt.Errorf("%w: no content in thread", ErrMalformed)
	}
	return t, nil
}

func walk(th thing, depth int, post *thread.Post, comments *[]thread.Comment) error {
	if depth > thread.MaxDepth {
		return nil
	}

	switch th.Kind {
	case kindListing:
		var l listingData
		if err := json.Unmarshal(th.Data, &l); err != nil {
			return fmt.Errorf("%w: listing: %v", ErrMalformed, err)
		}
		for _, child := range l.Children {
			if err := walk(child, depth, post, comments); err != nil {
				return err
			}
		}

	case kindPost:
		var p postData
		if err := json.Unmarshal(th.Data, &p); err != nil {
			return fmt.Errorf("%w: post: %v", ErrMalformed, err)
		}
		*post = thread.NewPost(
			p.Title, p.Selftext, authorOrDeleted(p.Author),
			p.Score, p.URL, p.NumComments, p.Subreddit,
		)

	case kindComment:
		var c commentData
		if err := json.Unmarshal(th.Data, &c); err != nil {
			return fmt.Errorf("%w: comment: %v", ErrMalformed, err)
		}
		if c.Body != "" && c.Body != "[deleted]" && c.Body != "[removed]" {
			*comments = append(*comments, thread.NewComment(c.Body, authorOrDeleted(c.Author), c.Score, depth))
		}
		// Replies is either a nested Listing or an empty string.
		if len(c.Replies) > 0 && c.Replies[0] == '{' {
			var replies thing
			if err := json.Unmarshal(c.Replies, &replies); err != nil {
				return fmt.Errorf("%w: replies: %v", ErrMalformed, err)
			}
			if err := walk(replies, depth+1, post, comments); err != nil {
				return err
			}
		}
	}

	return nil
}

func authorOrDeleted(author string) string {
	if author == "" {
		return "[deleted]"
	}
	return author
}

// Submission is one post in a subreddit listing, as surfaced by a scan.
type Submission struct {
	Title       string
	Permalink   string
	Score       int
	NumComments int
	Stickied    bool
	CreatedUTC  float64
}

// DecodeListing parses a subreddit listing payload into its submissions.
func DecodeListing(data []byte) ([]Submission, error) {
	var root thing
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if root.Kind != kindListing {
		return nil, fmt.Errorf("%w: expected Listing, got %q", ErrMalformed, root.Kind)
	}

	var l listingData
	if err := json.Unmarshal(root.Data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	subs := make([]Submission, 0, len(l.Children))
	for _, child := range l.Children {
		if child.Kind != kindPost {
			continue
		}
		var p postData
		if err := json.Unmarshal(child.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: post: %v", ErrMalformed, err)
		}
		subs = append(subs, Submission{
			Title:       p.Title,
			Permalink:   p.Permalink,
			Score:       p.Score,
			NumComments: p.NumComments,
			Stickied:    p.Stickied,
			CreatedUTC:  p.CreatedUTC,
		})
	}
	return subs, nil
}
