package shortener

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mrrizaldi/shortener-link/internal"
)

const (
	DefaultSlugLength   = 6
	MinCustomSlugLength = 3
	MaxCustomSlugLength = 30
)

var customSlugRe = regexp.MustCompile(`^[A-Za-z0-9]{3,30}$`)

// SlugChecker answers whether any row, deleted or not, holds a slug.
type SlugChecker interface {
	Exists(ctx context.Context, slug string) (bool, error)
}

type SlugGenerator struct {
	store SlugChecker
	draw  func(length int) (string, error)
}

func NewSlugGenerator(store SlugChecker) *SlugGenerator {
	return &SlugGenerator{
		store: store,
		draw: func(length int) (string, error) {
			return gonanoid.Generate(internal.SlugAlphabet, length)
		},
	}
}

// GenerateUnique draws random slugs until one is free. There is no retry cap:
// at 58^6 combinations a long run of collisions is not a practical concern.
func (g *SlugGenerator) GenerateUnique(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		length = DefaultSlugLength
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slug, err := g.draw(length)
		if err != nil {
			return "", fmt.Errorf("draw slug: %w", err)
		}
		if internal.IsReservedSlug(slug) {
			continue
		}

		taken, err := g.store.Exists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
	}
}

func ValidateCustomSlug(slug string) error {
	if !customSlugRe.MatchString(slug) {
		return fmt.Errorf("%w: custom slug must be %d-%d alphanumeric characters",
			ErrInvalidInput, MinCustomSlugLength, MaxCustomSlugLength)
	}
	if internal.IsReservedSlug(slug) {
		return fmt.Errorf("%w: custom slug %q is reserved", ErrInvalidInput, slug)
	}
	return nil
}

func ValidateOriginalURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidInput)
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid url format", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidInput)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}
	return nil
}
