package journal

import "errors"

var (
	// ErrInvalidKind is returned for a kind other than event or alert.
	ErrInvalidKind = errors.New("journal: invalid kind")

	// ErrEmptyMessage is returned when recording a blank line.
	ErrEmptyMessage = errors.New("journal: empty message")
)
