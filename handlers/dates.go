package handlers

import (
	"strings"
	"time"

	"portfolio-dashboard/models"

	"github.com/jinzhu/now"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD date in KST. Empty input, the placeholders
// browsers send for unset fields and malformed dates all yield ok=false.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "null", "undefined":
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, models.KST)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// asOfDate picks the valuation date for a dashboard request. Anything that
// is not a valid past date means today; only a past date is a backtest.
func asOfDate(target string, current time.Time) (asOf time.Time, backtest bool) {
	today := now.With(current.In(models.KST)).BeginningOfDay()
	t, ok := parseDate(target)
	if !ok || !t.Before(today) {
		return today, false
	}
	return t, true
}
