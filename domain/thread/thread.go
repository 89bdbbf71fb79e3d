// Package thread provides the domain model for a fetched discussion thread:
// the submission post, its comment tree flattened in reading order, and the
// text rendering used for analysis.
package thread

// MaxDepth is the deepest comment nesting level that is retained when a
// thread is flattened. Replies below this depth are dropped.
const MaxDepth = 10

// Post is the thread's submission.
type Post struct {
	title       string
	body        string
	author      string
	score       int
	url         string
	numComments int
	subreddit   string
}

// NewPost creates a Post.
func NewPost(title, body, author string, score int, url string, numComments int, subreddit string) Post {
	return Post{
		title:       title,
		body:        body,
		author:      author,
		score:       score,
		url:         url,
		numComments: numComments,
		subreddit:   subreddit,
	}
}

// Title returns the post title.
func (p Post) Title() string { return p.title }

// Body returns the post's self text, possibly empty.
func (p Post) Body() string { return p.body }

// Author returns the post author.
func (p Post) Author() string { return p.author }

// Score returns the post score.
func (p Post) Score() int { return p.score }

// URL returns the post's link URL.
func (p Post) URL() string { return p.url }

// NumComments returns the comment count reported by the source.
func (p Post) NumComments() int { return p.numComments }

// Subreddit returns the community the post was made in.
func (p Post) Subreddit() string { return p.subreddit }

// Comment is a single comment, annotated with its nesting depth.
type Comment struct {
	body   string
	author string
	score  int
	depth  int
}

// NewComment creates a Comment.
func NewComment(body, author string, score, depth int) Comment {
	return Comment{body: body, author: author, score: score, depth: depth}
}

// Body returns the comment text.
func (c Comment) Body() string { return c.body }

// Author returns the comment author.
func (c Comment) Author() string { return c.author }

// Score returns the comment score.
func (c Comment) Score() int { return c.score }

// Depth returns the nesting depth, zero for top-level comments.
func (c Comment) Depth() int { return c.depth }

// Thread is a fetched thread: the post plus its comments in reading order
// (depth-first, replies after their parent).
type Thread struct {
	post     Post
	comments []Comment
}

// NewThread creates a Thread from a post and its ordered comments.
func NewThread(post Post, comments []Comment) Thread {
	cs := make([]Comment, len(comments))
	copy(cs, comments)
	return Thread{post: post, comments: cs}
}

// Post returns the submission.
func (t Thread) Post() Post { return t.post }

// Comments returns the comments in reading order.
func (t Thread) Comments() []Comment {
	cs := make([]Comment, len(t.comments))
	copy(cs, t.comments)
	return cs
}

// CommentCount returns the number of retained comments.
func (t Thread) CommentCount() int { return len(t.comments) }

// Subreddit returns the community the thread belongs to.
func (t Thread) Subreddit() string { return t.post.subreddit }

// IsEmpty reports whether the thread has neither post content nor comments.
func (t Thread) IsEmpty() bool {
	return len(t.comments) == 0 && t.post.title == "" && t.post.body == ""
}
