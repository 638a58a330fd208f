package localday

import (
	"fmt"
	"sync"
	"time"

	"github.com/ventzon/loyalty/internal/pkg/env"
)

// The signup window and the dashboard's "today" counter must agree on what
// calendar day it is. Both go through this package with the same reference
// timezone so the boundary can never drift between the two call sites.

const DefaultTimezone = "America/New_York"

var (
	refLoc  *time.Location
	loadLoc sync.Once
)

// Location returns the reference timezone the whole service operates in.
// An unknown timezone name is a configuration error and panics at first use.
func Location() *time.Location {
	loadLoc.Do(func() {
		name := env.GetEnv("REFERENCE_TIMEZONE", DefaultTimezone)
		loc, err := time.LoadLocation(name)
		if err != nil {
			panic(fmt.Sprintf("invalid REFERENCE_TIMEZONE %q: %v", name, err))
		}
		refLoc = loc
	})
	return refLoc
}

// StartOfDay returns the UTC instant of local midnight of the civil day
// containing t in loc. time.Date normalizes through the tz database, so
// DST days of 23 or 25 hours come out correct.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.UTC()
}

// DayString returns the local civil day of t in loc as YYYY-MM-DD. This is
// the value stored in signups.local_day, which carries the per-day unique
// constraint.
func DayString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
