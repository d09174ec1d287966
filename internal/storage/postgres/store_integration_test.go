//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shortener"),
		tcpostgres.WithUsername("shortener"),
		tcpostgres.WithPassword("shortener"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(OpenConfig{DSN: dsn, LogLevel: "silent", MaxOpenConns: 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	return NewStore(db)
}

func strptr(s string) *string { return &s }

func TestStore_LinkLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	link := &internal.Link{ID: 1, Slug: "abc", OriginalURL: "https://example.com", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Insert(ctx, link))

	err := s.Insert(ctx, &internal.Link{ID: 2, Slug: "abc", OriginalURL: "https://other.example"})
	require.ErrorIs(t, err, shortener.ErrConflict)

	got, err := s.FindBySlug(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", got.OriginalURL)

	_, err = s.FindBySlug(ctx, "nope")
	require.ErrorIs(t, err, shortener.ErrNotFound)

	require.NoError(t, s.SoftDelete(ctx, "abc", time.Now().UTC()))
	require.ErrorIs(t, s.SoftDelete(ctx, "abc", time.Now().UTC()), shortener.ErrAlreadyDeleted)
	require.ErrorIs(t, s.SoftDelete(ctx, "nope", time.Now().UTC()), shortener.ErrNotFound)

	got, err = s.FindBySlug(ctx, "abc")
	require.NoError(t, err)
	require.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestStore_ConcurrentClicks(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	require.NoError(t, s.Insert(ctx, &internal.Link{ID: 1, Slug: "hot", OriginalURL: "https://example.com"}))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			require.NoError(t, s.RecordClick(ctx, internal.Click{LinkID: 1, ClickedAt: time.Now().UTC()}))
		}()
	}
	wg.Wait()

	link, err := s.FindBySlug(ctx, "hot")
	require.NoError(t, err)
	require.EqualValues(t, n, link.HitCount)

	count, err := s.CountClicks(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, n, count)
}

func TestStore_RecordClicksRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	require.NoError(t, s.Insert(ctx, &internal.Link{ID: 1, Slug: "abc", OriginalURL: "https://example.com"}))

	err := s.RecordClicks(ctx, []internal.Click{
		{LinkID: 1, ClickedAt: time.Now().UTC()},
		{LinkID: 404, ClickedAt: time.Now().UTC()},
	})
	require.ErrorIs(t, err, shortener.ErrUnknownLink)

	count, err := s.CountClicks(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestStore_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	require.NoError(t, s.Insert(ctx, &internal.Link{ID: 1, Slug: "abc", OriginalURL: "https://example.com"}))

	at := func(v string) time.Time {
		ts, err := time.Parse(time.RFC3339, v)
		require.NoError(t, err)
		return ts
	}
	clicks := []internal.Click{
		{LinkID: 1, ClickedAt: at("2024-01-01T05:59:59Z"), Referrer: strptr("https://a.example")},
		{LinkID: 1, ClickedAt: at("2024-01-01T06:00:00Z"), Referrer: strptr("https://a.example")},
		{LinkID: 1, ClickedAt: at("2024-01-03T10:00:00Z"), Referrer: strptr("https://b.example"), UserAgent: strptr("Mozilla/5.0 Firefox/120.0")},
		{LinkID: 1, ClickedAt: at("2024-01-09T10:00:00Z")},
	}
	require.NoError(t, s.RecordClicks(ctx, clicks))

	buckets, err := s.ClickBuckets(ctx, 1, analytics.Interval6h)
	require.NoError(t, err)
	require.Len(t, buckets, 4)
	require.Equal(t, at("2024-01-01T00:00:00Z"), buckets[0].Timestamp)
	require.Equal(t, at("2024-01-01T06:00:00Z"), buckets[1].Timestamp)

	weeks, err := s.ClickBuckets(ctx, 1, analytics.Interval7d)
	require.NoError(t, err)
	require.Equal(t, []analytics.Bucket{
		{Timestamp: at("2024-01-01T00:00:00Z"), Clicks: 3},
		{Timestamp: at("2024-01-08T00:00:00Z"), Clicks: 1},
	}, weeks)

	months, err := s.ClickBuckets(ctx, 1, analytics.Interval30d)
	require.NoError(t, err)
	require.Equal(t, []analytics.Bucket{{Timestamp: at("2024-01-01T00:00:00Z"), Clicks: 4}}, months)

	refs, err := s.TopReferrers(ctx, 1, analytics.TopReferrersLimit)
	require.NoError(t, err)
	require.Equal(t, []analytics.ReferrerCount{
		{Referrer: "https://a.example", Clicks: 2},
		{Referrer: "https://b.example", Clicks: 1},
	}, refs)

	agents, err := s.UserAgentCounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, agents, 2)
}
