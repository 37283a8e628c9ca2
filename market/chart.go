package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Window describes how a chart period is fetched: the span ending at the
// requested end date, the bar interval asked from the source, and an optional
// bucket the bars are resampled into afterwards.
type Window struct {
	Range    string
	Years    int
	Months   int
	Days     int
	Interval string
	Bucket   func(time.Time) time.Time
}

var weekConfig = &now.Config{WeekStartDay: time.Monday}

// Weekly buckets a time into the Monday starting its week.
func Weekly(t time.Time) time.Time { return weekConfig.With(t).BeginningOfWeek() }

// Monthly buckets a time into the first day of its month.
func Monthly(t time.Time) time.Time { return now.With(t).BeginningOfMonth() }

var windows = map[string]Window{
	"1d":  {Range: "1d", Days: 1, Interval: "5m"},
	"1wk": {Range: "7d", Days: 7, Interval: "30m"},
	"1mo": {Range: "1mo", Months: 1, Interval: "1d"},
	"3mo": {Range: "3mo", Months: 3, Interval: "1d"},
	"6mo": {Range: "6mo", Months: 6, Interval: "1d"},
	"1y":  {Range: "1y", Years: 1, Interval: "1d"},
	"5y":  {Range: "5y", Years: 5, Interval: "1d", Bucket: Weekly},
	"max": {Range: "max", Years: 30, Interval: "1d", Bucket: Monthly},
}

// Periods lists the supported chart period codes, shortest first.
func Periods() []string {
	return []string{"1d", "1wk", "1mo", "3mo", "6mo", "1y", "5y", "max"}
}

// WindowFor returns the window of a period code.
func WindowFor(period string) (Window, error) {
	w, ok := windows[period]
	if !ok {
		return Window{}, fmt.Errorf("%w: %q, want one of %s", ErrUnknownPeriod, period, strings.Join(Periods(), ", "))
	}
	return w, nil
}

// Request builds the source request for the window. With a zero end the
// window ends now and the source's own range is used; otherwise it covers
// the span up to and including the end day.
func (w Window) Request(end time.Time) HistoryRequest {
	if end.IsZero() {
		return HistoryRequest{Range: w.Range, Interval: w.Interval}
	}
	stop := now.With(end).BeginningOfDay().AddDate(0, 0, 1)
	return HistoryRequest{
		Start:    stop.AddDate(-w.Years, -w.Months, -w.Days),
		End:      stop,
		Interval: w.Interval,
	}
}

// Chart fetches the candles of ticker for a period code, ending at end (zero
// for now).
func Chart(ctx context.Context, src Source, ticker, period string, end time.Time) ([]Candle, error) {
	w, err := WindowFor(period)
	if err != nil {
		return nil, err
	}
	candles, err := src.History(ctx, ticker, w.Request(end))
	if err != nil {
		return nil, err
	}
	if w.Bucket != nil {
		candles = Resample(candles, w.Bucket)
	}
	return candles, nil
}

// Resample merges candles falling into the same bucket: open of the first,
// highest high, lowest low, close of the last and the summed volume. The
// output is ordered by bucket start.
func Resample(candles []Candle, bucket func(time.Time) time.Time) []Candle {
	if len(candles) == 0 {
		return nil
	}
	sorted := append([]Candle(nil), candles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var out []Candle
	for _, c := range sorted {
		key := bucket(c.Time)
		if n := len(out); n > 0 && out[n-1].Time.Equal(key) {
			last := &out[n-1]
			last.High = max(last.High, c.High)
			last.Low = min(last.Low, c.Low)
			last.Close = c.Close
			last.Volume += c.Volume
			continue
		}
		c.Time = key
		out = append(out, c)
	}
	return out
}
