package internal

import "strings"

// SlugAlphabet is the Base58 alphabet (like Bitcoin): URL-safe and free of
// the look-alike characters 0, O, I and l.
const SlugAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// reservedSlugs collide with routes served next to the redirect.
var reservedSlugs = map[string]struct{}{
	"api":       {},
	"health":    {},
	"metrics":   {},
	"dashboard": {},
	"static":    {},
	"favicon":   {},
	"robots":    {},
	"shorten":   {},
	"stats":     {},
	"admin":     {},
}

func IsReservedSlug(slug string) bool {
	_, ok := reservedSlugs[strings.ToLower(slug)]
	return ok
}
