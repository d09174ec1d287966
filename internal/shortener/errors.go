package shortener

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("slug already in use")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyDeleted = errors.New("already deleted")

	// ErrUnknownLink is returned when a click references a link id that has
	// no row. Retrying the write cannot succeed.
	ErrUnknownLink = errors.New("click references unknown link")
)
