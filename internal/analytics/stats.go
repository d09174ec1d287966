// Package analytics aggregates the click history of a link into the series
// and breakdowns shown on the dashboard.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

// TopReferrersLimit caps the referrer breakdown.
const TopReferrersLimit = 10

type Bucket struct {
	Timestamp time.Time `json:"timestamp"`
	Clicks    int64     `json:"clicks"`
}

// UserAgentCount is the number of clicks carrying one exact user agent.
// A nil UserAgent groups the clicks that sent none.
type UserAgentCount struct {
	UserAgent *string
	Clicks    int64
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Clicks   int64  `json:"clicks"`
}

type BrowserDeviceCount struct {
	Browser string `json:"browser"`
	Device  string `json:"device"`
	Clicks  int64  `json:"clicks"`
}

// Stats is the payload of the stats endpoint.
type Stats struct {
	Slug               string               `json:"slug"`
	URL                string               `json:"url"`
	CreatedAt          time.Time            `json:"createdAt"`
	TotalClicks        int64                `json:"totalClicks"`
	ClicksOverTime     []Bucket             `json:"clicksOverTime"`
	BrowserDeviceStats []BrowserDeviceCount `json:"browserDeviceStats"`
	TopReferrers       []ReferrerCount      `json:"topReferrers"`
	Interval           Interval             `json:"interval"`
}

// Source is the read side of the store the aggregator runs on.
//
// ClickBuckets returns only non-empty buckets, ascending by start.
// TopReferrers skips clicks without a referrer and orders by clicks desc.
type Source interface {
	FindBySlug(ctx context.Context, slug string) (internal.Link, error)
	CountClicks(ctx context.Context, linkID int64) (int64, error)
	ClickBuckets(ctx context.Context, linkID int64, iv Interval) ([]Bucket, error)
	UserAgentCounts(ctx context.Context, linkID int64) ([]UserAgentCount, error)
	TopReferrers(ctx context.Context, linkID int64, limit int) ([]ReferrerCount, error)
}

type Aggregator struct {
	src Source
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// GetStats aggregates the clicks of slug at interval. It reads the store on
// every call; identical data gives identical output.
func (a *Aggregator) GetStats(ctx context.Context, slug string, iv Interval) (Stats, error) {
	if !iv.Valid() {
		return Stats{}, fmt.Errorf("%w: %q", ErrInvalidInterval, string(iv))
	}

	link, err := a.src.FindBySlug(ctx, slug)
	if err != nil {
		return Stats{}, err
	}
	if link.IsDeleted {
		return Stats{}, shortener.ErrNotFound
	}

	total, err := a.src.CountClicks(ctx, link.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("stats %q: count clicks: %w", slug, err)
	}

	buckets, err := a.src.ClickBuckets(ctx, link.ID, iv)
	if err != nil {
		return Stats{}, fmt.Errorf("stats %q: click buckets: %w", slug, err)
	}

	agents, err := a.src.UserAgentCounts(ctx, link.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("stats %q: user agents: %w", slug, err)
	}

	referrers, err := a.src.TopReferrers(ctx, link.ID, TopReferrersLimit)
	if err != nil {
		return Stats{}, fmt.Errorf("stats %q: referrers: %w", slug, err)
	}
	if len(referrers) > TopReferrersLimit {
		referrers = referrers[:TopReferrersLimit]
	}

	if buckets == nil {
		buckets = []Bucket{}
	}
	if referrers == nil {
		referrers = []ReferrerCount{}
	}

	return Stats{
		Slug:               link.Slug,
		URL:                link.OriginalURL,
		CreatedAt:          link.CreatedAt,
		TotalClicks:        total,
		ClicksOverTime:     buckets,
		BrowserDeviceStats: BrowserDeviceBreakdown(agents),
		TopReferrers:       referrers,
		Interval:           iv,
	}, nil
}

// BrowserDeviceBreakdown classifies each user agent and sums the clicks per
// {browser, device}. Rows are ordered by clicks desc, then browser and device.
func BrowserDeviceBreakdown(agents []UserAgentCount) []BrowserDeviceCount {
	type key struct{ browser, device string }
	counts := make(map[key]int64)

	for _, a := range agents {
		ua := ""
		if a.UserAgent != nil {
			ua = *a.UserAgent
		}
		counts[key{ClassifyBrowser(ua), ClassifyDevice(ua)}] += a.Clicks
	}

	out := make([]BrowserDeviceCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, BrowserDeviceCount{Browser: k.browser, Device: k.device, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		if out[i].Browser != out[j].Browser {
			return out[i].Browser < out[j].Browser
		}
		return out[i].Device < out[j].Device
	})
	return out
}
