// Package sorter orders log records by a chain of field keys.
package sorter

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"logtab/calendar"
	nt "logtab/entity"
)

// NullEventRank is the rank of an empty event code, past E1 through E6.
const NullEventRank = 7

// MaxField is the highest sortable field index.
const MaxField = nt.Template

type kind int

const (
	numeric kind = iota
	timestamp
	text
	event
)

// kinds maps field index to comparison
var kinds = [MaxField + 1]kind{
	nt.LineId:   numeric,
	nt.Time:     timestamp,
	nt.Level:    text,
	nt.Content:  text,
	nt.EventId:  event,
	nt.Template: text,
}

// Sort returns records ordered by spec, leaving the input slice untouched.
//
// Keys are applied least significant first, each with a stable sort, so the
// first key in spec dominates.
func Sort(records []nt.Record, spec nt.SortSpec) (sorted []nt.Record, err error) {

	sorted = make([]nt.Record, len(records))
	copy(sorted, records)

	for i := len(spec) - 1; i >= 0; i-- {
		err = sortBy(sorted, spec[i])
		if err != nil {
			return
		}
	}
	return
}

// ParseSpec parses the option encoding, comma separated "[+|-][0-5]" tokens
// most significant first. An empty option or blank tokens yield an empty spec.
func ParseSpec(opt string) (spec nt.SortSpec, err error) {

	for _, token := range strings.Split(opt, ",") {
		if token == "" {
			continue
		}

		if len(token) != 2 || (token[0] != '+' && token[0] != '-') ||
			token[1] < '0' || token[1] > '0'+MaxField {
			err = errors.Wrapf(nt.ErrInvalidSortKey, "bad sort option %q", token)
			return
		}

		spec = append(spec, nt.SortKey{
			Field: int(token[1] - '0'),
			Desc:  token[0] == '-',
		})
	}
	return
}

// unexported

type keyed struct {
	record nt.Record
	num    int64
	str    string
	null   bool
}

func sortBy(records []nt.Record, key nt.SortKey) (err error) {

	if key.Field < 0 || key.Field > MaxField {
		err = errors.Wrapf(nt.ErrInvalidSortKey, "field %d is not in 0-%d", key.Field, MaxField)
		return
	}
	kd := kinds[key.Field]

	items := make([]keyed, len(records))
	for i, record := range records {
		items[i], err = makeKey(record, key.Field, kd)
		if err != nil {
			err = errors.Wrapf(err, "failed to key record %d", i+1)
			return
		}
	}

	less := compare(kd)
	if key.Desc {
		less = reverse(kd, less)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})

	for i := range items {
		records[i] = items[i].record
	}
	return
}

func makeKey(record nt.Record, field int, kd kind) (item keyed, err error) {

	if field >= len(record) {
		err = errors.Wrapf(nt.ErrInvalidSortKey, "field %d not present in record of %d fields", field, len(record))
		return
	}
	item.record = record
	value := record[field]

	switch kd {
	case numeric:
		item.num, err = strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			err = errors.Wrapf(nt.ErrFormat, "line id %q is not numeric", value)
		}
	case timestamp:
		item.num, err = calendar.Seconds(value)
	case event:
		item.num, item.null, err = eventRank(value)
	default:
		item.str = value
	}
	return
}

func eventRank(code string) (rank int64, null bool, err error) {

	if code == "" {
		rank = NullEventRank
		null = true
		return
	}

	digits := strings.TrimLeftFunc(code, unicode.IsLetter)
	rank, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		err = errors.Wrapf(nt.ErrFormat, "event code %q has no numeric suffix", code)
	}
	return
}

func compare(kd kind) func(a, b keyed) bool {

	if kd == text {
		return func(a, b keyed) bool { return a.str < b.str }
	}
	return func(a, b keyed) bool { return a.num < b.num }
}

// reverse flips order, except empty event codes which stay last
func reverse(kd kind, less func(a, b keyed) bool) func(a, b keyed) bool {

	if kd == event {
		return func(a, b keyed) bool {
			if a.null || b.null {
				return !a.null && b.null
			}
			return less(b, a)
		}
	}
	return func(a, b keyed) bool { return less(b, a) }
}
