package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/threadlens/threadlens/internal/ttlcache"
)

// Share cache defaults. Shared results live much longer than the analysis
// cache so links stay valid for a day.
const (
	DefaultShareTTL        = 24 * time.Hour
	DefaultShareMaxEntries = 500

	shareIDLength = 8
)

// Share stores analysis payloads under short opaque IDs for link sharing.
type Share struct {
	cache *ttlcache.Cache[json.RawMessage]
	newID func() string
	now   func() time.Time
}

// ShareOption configures a Share service.
type ShareOption func(*Share)

// WithShareCache sets the share cache. Tests pass an isolated instance.
func WithShareCache(c *ttlcache.Cache[json.RawMessage]) ShareOption {
	return func(s *Share) { s.cache = c }
}

// WithShareIDSource sets the ID generator.
func WithShareIDSource(f func() string) ShareOption {
	return func(s *Share) { s.newID = f }
}

// WithShareClock sets the time source.
func WithShareClock(now func() time.Time) ShareOption {
	return func(s *Share) { s.now = now }
}

// NewShare creates a Share service.
func NewShare(opts ...ShareOption) *Share {
	s := &Share{
		newID: func() string { return uuid.NewString()[:shareIDLength] },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = ttlcache.New[json.RawMessage](DefaultShareTTL, ttlcache.WithMaxEntries(DefaultShareMaxEntries))
	}
	return s
}

// Cache returns the share cache.
func (s *Share) Cache() *ttlcache.Cache[json.RawMessage] {
	return s.cache
}

// Create stores the payload and returns its share ID.
func (s *Share) Create(payload json.RawMessage) string {
	id := s.newID()
	s.cache.Put(id, payload, s.now())
	return id
}

// Get returns the payload stored under id, or false if it never existed or
// has expired.
func (s *Share) Get(id string) (json.RawMessage, bool) {
	return s.cache.Get(id, s.now())
}
