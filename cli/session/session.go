// Package session keeps imported documents in memory for the lifetime of a
// viewer run. Entries expire after a period without access.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"rtcview/schema"
)

// MaxSessions bounds how many imports are kept at once. The least recently
// used one is dropped first.
const MaxSessions = 16

// Entry describes a stored import without exposing the document itself.
type Entry struct {
	ID         string
	Source     string
	Variant    schema.Variant
	ImportedAt time.Time
}

// Store is safe for concurrent use.
type Store struct {
	cache *ttlcache.Cache[string, *schema.Document]
	once  sync.Once
}

// New returns a store whose entries expire after ttl without a Get. The
// cleanup goroutine runs until Close.
func New(ttl time.Duration) *Store {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *schema.Document](ttl),
		ttlcache.WithCapacity[string, *schema.Document](MaxSessions),
	)
	cache.OnEviction(func(ctx context.Context,
		er ttlcache.EvictionReason,
		i *ttlcache.Item[string, *schema.Document]) {
		log.Debug("session evicted", "id", i.Key(), "source", i.Value().Source, "reason", er)
	})

	go cache.Start()
	return &Store{cache: cache}
}

// Put stores doc under a new id and returns the id.
func (s *Store) Put(doc *schema.Document) string {
	id := uuid.NewString()
	s.cache.Set(id, doc, ttlcache.DefaultTTL)
	log.Debug("session created", "id", id, "source", doc.Source)
	return id
}

// Replace swaps the document stored under id, keeping the id stable for
// views that hold it. It reports false when id has expired.
func (s *Store) Replace(id string, doc *schema.Document) bool {
	if s.cache.Get(id) == nil {
		return false
	}
	s.cache.Set(id, doc, ttlcache.DefaultTTL)
	return true
}

func (s *Store) Get(id string) (*schema.Document, bool) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.Len()
}

// Recent lists stored imports, newest first.
func (s *Store) Recent() []Entry {
	items := s.cache.Items()
	out := make([]Entry, 0, len(items))
	for id, it := range items {
		doc := it.Value()
		out = append(out, Entry{ID: id, Source: doc.Source, Variant: doc.Variant(), ImportedAt: doc.ImportedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ImportedAt.After(out[j].ImportedAt)
	})
	return out
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *Store) Close() {
	s.once.Do(s.cache.Stop)
}
