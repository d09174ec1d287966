package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mrrizaldi/shortener-link/internal/qrcode"
)

type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
	CustomSlug  string `json:"customSlug" validate:"omitempty,min=3,max=30,alphanum"`
}

type linkResponse struct {
	Slug        string    `json:"slug"`
	OriginalURL string    `json:"originalUrl"`
	HitCount    int64     `json:"hitCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *handler) shortURL(slug string) string {
	return h.AppDomain + "/" + slug
}

func (h *handler) shorten(c *fiber.Ctx) error {
	var req shortenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidInput})
	}
	if errs := validateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidInput, "details": errs})
	}

	link, err := h.Links.Shorten(c.UserContext(), req.OriginalURL, req.CustomSlug)
	if err != nil {
		return respondError(c, "shorten", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shortUrl": h.shortURL(link.Slug)})
}

func (h *handler) listURLs(c *fiber.Ctx) error {
	links, err := h.Links.List(c.UserContext())
	if err != nil {
		return respondError(c, "list", err)
	}

	out := make([]linkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, linkResponse{
			Slug:        l.Slug,
			OriginalURL: l.OriginalURL,
			HitCount:    l.HitCount,
			CreatedAt:   l.CreatedAt,
		})
	}
	return c.JSON(out)
}

func (h *handler) deleteURL(c *fiber.Ctx) error {
	slug := utils.CopyString(c.Params("slug"))
	ctx := c.UserContext()

	if err := h.Links.Delete(ctx, slug); err != nil {
		return respondError(c, "delete", err)
	}
	h.StatsCache.Invalidate(ctx, slug)

	return c.JSON(fiber.Map{"message": "URL deleted successfully"})
}

func (h *handler) qr(c *fiber.Ctx) error {
	slug := c.Params("slug")

	link, err := h.Links.Get(c.UserContext(), slug)
	if err != nil {
		return respondError(c, "qr", err)
	}

	png, err := qrcode.PNG(h.shortURL(link.Slug), qrcode.DefaultSize)
	if err != nil {
		return respondError(c, "qr", err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="qr-`+link.Slug+`.png"`)
	return c.Send(png)
}
