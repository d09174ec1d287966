package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

type Store struct {
	db *gorm.DB
}

var (
	_ shortener.Store  = (*Store)(nil)
	_ analytics.Source = (*Store)(nil)
)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindBySlug(ctx context.Context, slug string) (internal.Link, error) {
	var link internal.Link
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.Link{}, shortener.ErrNotFound
	}
	if err != nil {
		return internal.Link{}, fmt.Errorf("postgres: find link %q: %w", slug, err)
	}
	return link, nil
}

func (s *Store) Exists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&internal.Link{}).Where("slug = ?", slug).Limit(1).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("postgres: check slug %q: %w", slug, err)
	}
	return n > 0, nil
}

func (s *Store) Insert(ctx context.Context, link *internal.Link) error {
	err := s.db.WithContext(ctx).Omit("Clicks").Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shortener.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("postgres: insert link %q: %w", link.Slug, err)
	}
	return nil
}

// IncrementHitCount adds n in the database, so concurrent callers never lose updates.
func (s *Store) IncrementHitCount(ctx context.Context, linkID int64, n int64) error {
	res := s.db.WithContext(ctx).Model(&internal.Link{}).
		Where("id = ?", linkID).
		UpdateColumn("hit_count", gorm.Expr("hit_count + ?", n))
	if res.Error != nil {
		return fmt.Errorf("postgres: increment hit count of %d: %w", linkID, res.Error)
	}
	if res.RowsAffected == 0 {
		return shortener.ErrNotFound
	}
	return nil
}

func (s *Store) RecordClick(ctx context.Context, click internal.Click) error {
	return s.RecordClicks(ctx, []internal.Click{click})
}

// RecordClicks inserts the clicks and adds each link's share to hit_count in
// one transaction.
func (s *Store) RecordClicks(ctx context.Context, clicks []internal.Click) error {
	if len(clicks) == 0 {
		return nil
	}

	counts := make(map[int64]int64)
	for _, c := range clicks {
		counts[c.LinkID]++
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&clicks, 100).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return fmt.Errorf("postgres: insert clicks: %w", shortener.ErrUnknownLink)
			}
			return fmt.Errorf("postgres: insert clicks: %w", err)
		}

		txStore := &Store{db: tx}
		for linkID, n := range counts {
			if err := txStore.IncrementHitCount(ctx, linkID, n); err != nil {
				if errors.Is(err, shortener.ErrNotFound) {
					return fmt.Errorf("postgres: link %d: %w", linkID, shortener.ErrUnknownLink)
				}
				return err
			}
		}
		return nil
	})
}

func (s *Store) SoftDelete(ctx context.Context, slug string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&internal.Link{}).
		Where("slug = ? AND is_deleted = ?", slug, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": at})
	if res.Error != nil {
		return fmt.Errorf("postgres: soft delete %q: %w", slug, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	exists, err := s.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return shortener.ErrAlreadyDeleted
	}
	return shortener.ErrNotFound
}

func (s *Store) ListActive(ctx context.Context) ([]internal.Link, error) {
	var links []internal.Link
	err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").Order("id DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: list links: %w", err)
	}
	return links, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
