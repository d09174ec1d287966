package shortener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
)

// Visit is the tracking context taken from the redirect request.
// Absent values stay nil and are stored as NULL.
type Visit struct {
	UserAgent *string
	Referrer  *string
	IP        *string
}

// NewVisit builds a Visit from raw header values. The client address is the
// first hop of X-Forwarded-For, else X-Real-IP, else unknown.
func NewVisit(userAgent, referrer, forwardedFor, realIP string) Visit {
	return Visit{
		UserAgent: nonEmpty(userAgent),
		Referrer:  nonEmpty(referrer),
		IP:        clientIP(forwardedFor, realIP),
	}
}

func clientIP(forwardedFor, realIP string) *string {
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return nonEmpty(strings.TrimSpace(first))
	}
	return nonEmpty(strings.TrimSpace(realIP))
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Tracker writes a click somewhere. Whether Track blocks until the click is
// stored depends on the implementation.
type Tracker interface {
	Track(ctx context.Context, ev internal.ClickEvent) error
}

type LinkFinder interface {
	FindBySlug(ctx context.Context, slug string) (internal.Link, error)
}

type Resolver struct {
	links   LinkFinder
	tracker Tracker
	now     func() time.Time
}

func NewResolver(links LinkFinder, tracker Tracker) *Resolver {
	return &Resolver{links: links, tracker: tracker, now: time.Now}
}

// Resolve returns the destination of slug and hands one click to the tracker.
// Unknown and soft-deleted slugs are ErrNotFound. A tracker error fails the
// whole call so the destination is never returned for an untracked visit.
func (r *Resolver) Resolve(ctx context.Context, slug string, v Visit) (string, error) {
	link, err := r.links.FindBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if link.IsDeleted {
		return "", ErrNotFound
	}

	ev := internal.ClickEvent{
		LinkID:    link.ID,
		Slug:      link.Slug,
		ClickedAt: r.now().UTC(),
		UserAgent: v.UserAgent,
		Referrer:  v.Referrer,
		IP:        v.IP,
	}
	if err := r.tracker.Track(ctx, ev); err != nil {
		return "", fmt.Errorf("track click for %q: %w", slug, err)
	}

	return link.OriginalURL, nil
}
