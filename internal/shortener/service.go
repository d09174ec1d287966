package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/metrics"
)

// Service owns the link lifecycle: shorten, list, look up, soft delete.
type Service struct {
	store Store
	slugs *SlugGenerator
	ids   IDGenerator
	now   func() time.Time
}

func NewService(store Store, ids IDGenerator) *Service {
	return &Service{
		store: store,
		slugs: NewSlugGenerator(store),
		ids:   ids,
		now:   time.Now,
	}
}

// Shorten stores a new link. An empty customSlug asks for a generated one.
func (s *Service) Shorten(ctx context.Context, originalURL, customSlug string) (internal.Link, error) {
	originalURL = strings.TrimSpace(originalURL)
	customSlug = strings.TrimSpace(customSlug)

	if err := ValidateOriginalURL(originalURL); err != nil {
		return internal.Link{}, err
	}

	if customSlug != "" {
		if err := ValidateCustomSlug(customSlug); err != nil {
			return internal.Link{}, err
		}
		taken, err := s.store.Exists(ctx, customSlug)
		if err != nil {
			return internal.Link{}, fmt.Errorf("shorten: check slug: %w", err)
		}
		if taken {
			return internal.Link{}, ErrConflict
		}
		return s.insert(ctx, originalURL, customSlug)
	}

	for {
		slug, err := s.slugs.GenerateUnique(ctx, DefaultSlugLength)
		if err != nil {
			return internal.Link{}, fmt.Errorf("shorten: %w", err)
		}

		link, err := s.insert(ctx, originalURL, slug)
		if errors.Is(err, ErrConflict) {
			// Lost a race for the drawn slug between the check and the insert.
			continue
		}
		return link, err
	}
}

func (s *Service) insert(ctx context.Context, originalURL, slug string) (internal.Link, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return internal.Link{}, fmt.Errorf("shorten: next id: %w", err)
	}

	link := internal.Link{
		ID:          id,
		Slug:        slug,
		OriginalURL: originalURL,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, &link); err != nil {
		if errors.Is(err, ErrConflict) {
			return internal.Link{}, ErrConflict
		}
		return internal.Link{}, fmt.Errorf("shorten: insert: %w", err)
	}

	metrics.LinksCreated.Inc()
	logger.FromContext(ctx).Info("link created", "slug", slug, "link_id", id)
	return link, nil
}

// Get returns an active link; soft-deleted links are ErrNotFound.
func (s *Service) Get(ctx context.Context, slug string) (internal.Link, error) {
	link, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return internal.Link{}, err
	}
	if link.IsDeleted {
		return internal.Link{}, ErrNotFound
	}
	return link, nil
}

// List returns the non-deleted links, newest first.
func (s *Service) List(ctx context.Context) ([]internal.Link, error) {
	links, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	if err := s.store.SoftDelete(ctx, slug, s.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyDeleted) {
			return err
		}
		return fmt.Errorf("delete link: %w", err)
	}

	logger.FromContext(ctx).Info("link deleted", "slug", slug)
	return nil
}
