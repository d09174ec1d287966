package shortener

import (
	"context"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
)

// Store is the persistence the link service and the resolver run on.
//
// FindBySlug returns soft-deleted rows too; callers decide what deleted means.
// Insert reports a taken slug as ErrConflict. SoftDelete reports ErrNotFound or
// ErrAlreadyDeleted. RecordClick and RecordClicks insert the clicks and add to
// the owning links' hit_count in one transaction.
type Store interface {
	FindBySlug(ctx context.Context, slug string) (internal.Link, error)
	Exists(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, link *internal.Link) error
	IncrementHitCount(ctx context.Context, linkID int64, n int64) error
	RecordClick(ctx context.Context, click internal.Click) error
	RecordClicks(ctx context.Context, clicks []internal.Click) error
	SoftDelete(ctx context.Context, slug string, at time.Time) error
	ListActive(ctx context.Context) ([]internal.Link, error)
	Ping(ctx context.Context) error
}

// ClickWriter is the slice of Store the trackers need.
type ClickWriter interface {
	RecordClick(ctx context.Context, click internal.Click) error
}

type IDGenerator interface {
	NextID() (int64, error)
}
