package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/analytics"
)

// Bucket expressions are fixed strings picked by the interval; the width or
// unit goes in as a bind parameter.
const (
	fixedBucketExpr    = "to_timestamp(floor(extract(epoch from clicked_at) / ?::float8) * ?::float8)"
	calendarBucketExpr = "date_trunc(?, clicked_at AT TIME ZONE 'UTC') AT TIME ZONE 'UTC'"
)

func bucketExpr(iv analytics.Interval) (string, []any, error) {
	if width, ok := iv.Width(); ok {
		secs := width.Seconds()
		return fixedBucketExpr, []any{secs, secs}, nil
	}
	if unit, ok := iv.Unit(); ok {
		return calendarBucketExpr, []any{string(unit)}, nil
	}
	return "", nil, fmt.Errorf("%w: %q", analytics.ErrInvalidInterval, string(iv))
}

func (s *Store) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&internal.Click{}).Where("link_id = ?", linkID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("postgres: count clicks of %d: %w", linkID, err)
	}
	return n, nil
}

func (s *Store) ClickBuckets(ctx context.Context, linkID int64, iv analytics.Interval) ([]analytics.Bucket, error) {
	expr, args, err := bucketExpr(iv)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Bucket time.Time
		Clicks int64
	}
	err = s.db.WithContext(ctx).Model(&internal.Click{}).
		Select(expr+" AS bucket, COUNT(*) AS clicks", args...).
		Where("link_id = ?", linkID).
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: click buckets of %d: %w", linkID, err)
	}

	out := make([]analytics.Bucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, analytics.Bucket{Timestamp: r.Bucket.UTC(), Clicks: r.Clicks})
	}
	return out, nil
}

func (s *Store) UserAgentCounts(ctx context.Context, linkID int64) ([]analytics.UserAgentCount, error) {
	var rows []struct {
		UserAgent *string
		Clicks    int64
	}
	err := s.db.WithContext(ctx).Model(&internal.Click{}).
		Select("user_agent, COUNT(*) AS clicks").
		Where("link_id = ?", linkID).
		Group("user_agent").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: user agents of %d: %w", linkID, err)
	}

	out := make([]analytics.UserAgentCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, analytics.UserAgentCount{UserAgent: r.UserAgent, Clicks: r.Clicks})
	}
	return out, nil
}

func (s *Store) TopReferrers(ctx context.Context, linkID int64, limit int) ([]analytics.ReferrerCount, error) {
	var out []analytics.ReferrerCount
	err := s.db.WithContext(ctx).Model(&internal.Click{}).
		Select("referrer, COUNT(*) AS clicks").
		Where("link_id = ? AND referrer IS NOT NULL", linkID).
		Group("referrer").
		Order("clicks DESC").Order("referrer ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: referrers of %d: %w", linkID, err)
	}
	return out, nil
}
