package entity

import (
	"strings"

	"github.com/pkg/errors"
)

// DateRange bounds a filter with canonical datetimes, "YYYY-MM-DD HH:MM:SS".
// Bounds are validated where the filter runs, not here.
type DateRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ParseRange parses the "start,end" option encoding.
// An empty or all-blank option yields a nil range.
func ParseRange(opt string) (rng *DateRange, err error) {

	parts := strings.Split(opt, ",")

	blank := true
	for _, part := range parts {
		if part != "" {
			blank = false
		}
	}
	if blank {
		return
	}

	if len(parts) != 2 {
		err = errors.Wrapf(ErrInvalidDateRange, "expected start,end but got %d values", len(parts))
		return
	}

	rng = &DateRange{Start: parts[0], End: parts[1]}
	return
}
