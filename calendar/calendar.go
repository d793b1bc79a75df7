// Package calendar converts log timestamps to and from seconds elapsed since
// 0001-01-01 00:00:00 on the proleptic Gregorian calendar.
package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	nt "logtab/entity"
)

const (
	secondsPerDay = 86400
	daysPer400    = 146097 // days in a full leap cycle
)

var months = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// IsLeap reports whether year has a February 29th.
func IsLeap(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Canonical reformats a raw log timestamp, "Sun Dec 04 04:47:44 2005",
// into "2005-12-04 04:47:44".
func Canonical(raw string) (canonical string, err error) {

	tokens := strings.Split(raw, " ")
	if len(tokens) != 5 {
		err = errors.Wrapf(nt.ErrFormat, "expected 5 tokens in %q, got %d", raw, len(tokens))
		return
	}

	month, ok := months[tokens[1]]
	if !ok {
		err = errors.Wrapf(nt.ErrFormat, "unknown month %q in %q", tokens[1], raw)
		return
	}

	canonical = fmt.Sprintf("%s-%s-%s %s", tokens[4], month, tokens[2], tokens[3])
	return
}

// Seconds returns seconds since the epoch for a raw log timestamp.
func Seconds(raw string) (seconds int64, err error) {

	canonical, err := Canonical(raw)
	if err != nil {
		return
	}

	seconds, err = CanonicalSeconds(canonical)
	return
}

// CanonicalSeconds returns seconds since the epoch for a canonical datetime.
func CanonicalSeconds(canonical string) (seconds int64, err error) {

	dt, err := split(canonical)
	if err != nil {
		return
	}
	if dt.month < 1 || dt.month > 12 {
		err = errors.Wrapf(nt.ErrFormat, "month out of range in %q", canonical)
		return
	}

	prior := dt.year - 1
	days := prior*365 + prior/4 - prior/100 + prior/400

	lengths := monthLengths(dt.year)
	for _, length := range lengths[:dt.month-1] {
		days += length
	}
	days += dt.day - 1

	seconds = days*secondsPerDay + dt.hour*3600 + dt.minute*60 + dt.second
	return
}

// Timestamp formats seconds since the epoch as a canonical datetime.
// Negative input is clamped to the epoch.
func Timestamp(seconds int64) string {

	if seconds < 0 {
		seconds = 0
	}

	days := seconds / secondsPerDay
	rem := seconds % secondsPerDay

	// whole leap cycles first, then walk years
	year := 1 + 400*(days/daysPer400)
	days %= daysPer400

	for {
		length := int64(365)
		if IsLeap(year) {
			length = 366
		}
		if days < length {
			break
		}
		days -= length
		year++
	}

	month := 1
	for _, length := range monthLengths(year) {
		if days < length {
			break
		}
		days -= length
		month++
	}

	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		year, month, days+1, rem/3600, rem%3600/60, rem%60)
}

// Valid checks that s is a canonical datetime naming a real date and time.
func Valid(s string) bool {

	dt, err := split(s)
	if err != nil {
		return false
	}

	if dt.year < 1 || dt.month < 1 || dt.month > 12 {
		return false
	}
	if dt.day < 1 || dt.day > monthLengths(dt.year)[dt.month-1] {
		return false
	}

	return dt.hour >= 0 && dt.hour < 24 &&
		dt.minute >= 0 && dt.minute < 60 &&
		dt.second >= 0 && dt.second < 60
}

// unexported

type datetime struct {
	year, month, day     int64
	hour, minute, second int64
}

func split(canonical string) (dt datetime, err error) {

	halves := strings.Fields(canonical)
	if len(halves) != 2 {
		err = errors.Wrapf(nt.ErrFormat, "expected date and time in %q", canonical)
		return
	}

	date, err := numbers(halves[0], "-")
	if err != nil {
		return
	}
	clock, err := numbers(halves[1], ":")
	if err != nil {
		return
	}

	dt = datetime{
		year:   date[0],
		month:  date[1],
		day:    date[2],
		hour:   clock[0],
		minute: clock[1],
		second: clock[2],
	}
	return
}

func numbers(part, sep string) (nums [3]int64, err error) {

	tokens := strings.Split(part, sep)
	if len(tokens) != 3 {
		err = errors.Wrapf(nt.ErrFormat, "expected 3 values in %q", part)
		return
	}

	for i, token := range tokens {
		nums[i], err = strconv.ParseInt(token, 10, 64)
		if err != nil {
			err = errors.Wrapf(nt.ErrFormat, "non-numeric %q in %q", token, part)
			return
		}
	}
	return
}

func monthLengths(year int64) [12]int64 {

	feb := int64(28)
	if IsLeap(year) {
		feb = 29
	}
	return [12]int64{31, feb, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
}
