package entity

import "github.com/pkg/errors"

// Error kinds, wrapped with context by the operations that detect them.
// Check with errors.Is.
var (
	ErrFormat            = errors.New("unparseable timestamp or date")
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrFilterFailed      = errors.New("filtering failed")
	ErrEmptyFilterResult = errors.New("empty filter result")
	ErrConvertFailed     = errors.New("conversion failed")
	ErrIO                = errors.New("file access failed")
)
