// Package dateparam parses the date inputs the API accepts: a plain
// calendar date (2025-06-14) or an RFC 3339 timestamp. Calendar dates are
// taken as UTC midnight.
package dateparam

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned for values that match neither accepted layout.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ErrInvertedRange is returned when start is after end.
var ErrInvertedRange = errors.New("start must not be after end")

// Parse returns the instant s names and whether it was a bare date.
func Parse(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, ErrInvalidDate
}

// ParseDate is Parse without the date-only flag.
func ParseDate(s string) (time.Time, error) {
	t, _, err := Parse(s)
	return t, err
}

// Range is a half-open interval [From, To). A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// FromRequest reads the start and end query parameters. A bare-date end
// covers that whole day; a timestamp end is inclusive to the millisecond,
// which is Mongo's date precision.
func FromRequest(r *http.Request) (Range, error) {
	var rg Range
	q := r.URL.Query()

	if s := q.Get("start"); strings.TrimSpace(s) != "" {
		t, _, err := Parse(s)
		if err != nil {
			return Range{}, err
		}
		rg.From = t
	}
	if s := q.Get("end"); strings.TrimSpace(s) != "" {
		t, dateOnly, err := Parse(s)
		if err != nil {
			return Range{}, err
		}
		if dateOnly {
			rg.To = t.AddDate(0, 0, 1)
		} else {
			rg.To = t.Add(time.Millisecond)
		}
	}
	if !rg.From.IsZero() && !rg.To.IsZero() && !rg.From.Before(rg.To) {
		return Range{}, ErrInvertedRange
	}
	return rg, nil
}

// Label renders the range for export headers, e.g. "2025-06-01 to 2025-06-30".
func (rg Range) Label() string {
	from, to := "any", "any"
	if !rg.From.IsZero() {
		from = rg.From.Format(dateLayout)
	}
	if !rg.To.IsZero() {
		to = rg.To.Add(-time.Millisecond).Format(dateLayout)
	}
	return from + " to " + to
}

// Filter matches field against the range. Open bounds are left out, so a
// fully open range yields an empty filter.
func (rg Range) Filter(field string) bson.M {
	cond := bson.M{}
	if !rg.From.IsZero() {
		cond["$gte"] = rg.From
	}
	if !rg.To.IsZero() {
		cond["$lt"] = rg.To
	}
	if len(cond) == 0 {
		return bson.M{}
	}
	return bson.M{field: cond}
}
