package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

func strptr(s string) *string { return &s }

func seedLink(t *testing.T, s *Store, id int64, slug string) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), &internal.Link{
		ID: id, Slug: slug, OriginalURL: "https://example.com/" + slug,
	}))
}

func TestStore_InsertConflictIncludesDeleted(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedLink(t, s, 1, "abc")

	require.NoError(t, s.SoftDelete(ctx, "abc", time.Now()))
	require.ErrorIs(t, s.SoftDelete(ctx, "abc", time.Now()), shortener.ErrAlreadyDeleted)
	require.ErrorIs(t, s.SoftDelete(ctx, "zzz", time.Now()), shortener.ErrNotFound)

	err := s.Insert(ctx, &internal.Link{ID: 2, Slug: "abc", OriginalURL: "https://example.com"})
	require.ErrorIs(t, err, shortener.ErrConflict)

	exists, err := s.Exists(ctx, "abc")
	require.NoError(t, err)
	require.True(t, exists)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestStore_RecordClicksAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedLink(t, s, 1, "abc")

	err := s.RecordClicks(ctx, []internal.Click{{LinkID: 1}, {LinkID: 99}})
	require.ErrorIs(t, err, shortener.ErrUnknownLink)

	n, err := s.CountClicks(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, n)

	link, err := s.FindBySlug(ctx, "abc")
	require.NoError(t, err)
	require.Zero(t, link.HitCount)

	require.NoError(t, s.RecordClicks(ctx, []internal.Click{{LinkID: 1}, {LinkID: 1}}))
	link, err = s.FindBySlug(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, int64(2), link.HitCount)
}

func TestStore_ClickBucketsSkipEmpty(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedLink(t, s, 1, "abc")

	at := func(v string) time.Time {
		ts, err := time.Parse(time.RFC3339, v)
		require.NoError(t, err)
		return ts
	}
	require.NoError(t, s.RecordClicks(ctx, []internal.Click{
		{LinkID: 1, ClickedAt: at("2024-01-01T13:00:00Z")},
		{LinkID: 1, ClickedAt: at("2024-01-01T05:59:59Z")},
		{LinkID: 1, ClickedAt: at("2024-01-01T06:00:00Z")},
		{LinkID: 1, ClickedAt: at("2024-01-01T01:00:00Z")},
	}))

	buckets, err := s.ClickBuckets(ctx, 1, analytics.Interval6h)
	require.NoError(t, err)
	require.Equal(t, []analytics.Bucket{
		{Timestamp: at("2024-01-01T00:00:00Z"), Clicks: 2},
		{Timestamp: at("2024-01-01T06:00:00Z"), Clicks: 1},
		{Timestamp: at("2024-01-01T12:00:00Z"), Clicks: 1},
	}, buckets)
}

func TestStore_UserAgentAndReferrerCounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedLink(t, s, 1, "abc")

	require.NoError(t, s.RecordClicks(ctx, []internal.Click{
		{LinkID: 1, UserAgent: strptr("curl/8.0"), Referrer: strptr("https://a.example")},
		{LinkID: 1, UserAgent: strptr("curl/8.0"), Referrer: strptr("https://a.example")},
		{LinkID: 1, Referrer: strptr("https://b.example")},
		{LinkID: 1},
	}))

	agents, err := s.UserAgentCounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, agents, 2)

	refs, err := s.TopReferrers(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, []analytics.ReferrerCount{
		{Referrer: "https://a.example", Clicks: 2},
		{Referrer: "https://b.example", Clicks: 1},
	}, refs)
}
