// Package memory is an in-process Store for tests and for running the API
// without PostgreSQL (DB_URL=memory://). Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

type Store struct {
	mu      sync.RWMutex
	links   map[string]*internal.Link
	byID    map[int64]*internal.Link
	clicks  []internal.Click
	clickID uint64
}

var (
	_ shortener.Store  = (*Store)(nil)
	_ analytics.Source = (*Store)(nil)
)

func New() *Store {
	return &Store{
		links: make(map[string]*internal.Link),
		byID:  make(map[int64]*internal.Link),
	}
}

func (s *Store) FindBySlug(_ context.Context, slug string) (internal.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[slug]
	if !ok {
		return internal.Link{}, shortener.ErrNotFound
	}
	return *l, nil
}

func (s *Store) Exists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.links[slug]
	return ok, nil
}

func (s *Store) Insert(_ context.Context, link *internal.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[link.Slug]; ok {
		return shortener.ErrConflict
	}
	if _, ok := s.byID[link.ID]; ok {
		return fmt.Errorf("memory: duplicate link id %d", link.ID)
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	stored := *link
	stored.Clicks = nil
	s.links[link.Slug] = &stored
	s.byID[link.ID] = &stored
	return nil
}

func (s *Store) IncrementHitCount(_ context.Context, linkID int64, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.byID[linkID]
	if !ok {
		return shortener.ErrNotFound
	}
	l.HitCount += n
	return nil
}

func (s *Store) RecordClick(ctx context.Context, click internal.Click) error {
	return s.RecordClicks(ctx, []internal.Click{click})
}

// RecordClicks applies all clicks or none.
func (s *Store) RecordClicks(ctx context.Context, clicks []internal.Click) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range clicks {
		if _, ok := s.byID[c.LinkID]; !ok {
			return fmt.Errorf("memory: %w: %d", shortener.ErrUnknownLink, c.LinkID)
		}
	}

	for _, c := range clicks {
		s.clickID++
		c.ID = s.clickID
		if c.ClickedAt.IsZero() {
			c.ClickedAt = time.Now().UTC()
		}
		s.clicks = append(s.clicks, c)
		s.byID[c.LinkID].HitCount++
	}
	return nil
}

func (s *Store) SoftDelete(_ context.Context, slug string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[slug]
	if !ok {
		return shortener.ErrNotFound
	}
	if l.IsDeleted {
		return shortener.ErrAlreadyDeleted
	}
	l.IsDeleted = true
	l.DeletedAt = &at
	return nil
}

func (s *Store) ListActive(_ context.Context) ([]internal.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]internal.Link, 0, len(s.links))
	for _, l := range s.links {
		if !l.IsDeleted {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CountClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.clicks {
		if c.LinkID == linkID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ClickBuckets(_ context.Context, linkID int64, iv analytics.Interval) ([]analytics.Bucket, error) {
	if !iv.Valid() {
		return nil, analytics.ErrInvalidInterval
	}

	s.mu.RLock()
	counts := make(map[time.Time]int64)
	for _, c := range s.clicks {
		if c.LinkID == linkID {
			counts[iv.Truncate(c.ClickedAt)]++
		}
	}
	s.mu.RUnlock()

	out := make([]analytics.Bucket, 0, len(counts))
	for ts, n := range counts {
		out = append(out, analytics.Bucket{Timestamp: ts, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) UserAgentCounts(_ context.Context, linkID int64) ([]analytics.UserAgentCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		counts = make(map[string]int64)
		nulls  int64
	)
	for _, c := range s.clicks {
		if c.LinkID != linkID {
			continue
		}
		if c.UserAgent == nil {
			nulls++
			continue
		}
		counts[*c.UserAgent]++
	}

	out := make([]analytics.UserAgentCount, 0, len(counts)+1)
	for ua, n := range counts {
		ua := ua
		out = append(out, analytics.UserAgentCount{UserAgent: &ua, Clicks: n})
	}
	if nulls > 0 {
		out = append(out, analytics.UserAgentCount{Clicks: nulls})
	}
	return out, nil
}

func (s *Store) TopReferrers(_ context.Context, linkID int64, limit int) ([]analytics.ReferrerCount, error) {
	s.mu.RLock()
	counts := make(map[string]int64)
	for _, c := range s.clicks {
		if c.LinkID == linkID && c.Referrer != nil {
			counts[*c.Referrer]++
		}
	}
	s.mu.RUnlock()

	out := make([]analytics.ReferrerCount, 0, len(counts))
	for ref, n := range counts {
		out = append(out, analytics.ReferrerCount{Referrer: ref, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Referrer < out[j].Referrer
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
