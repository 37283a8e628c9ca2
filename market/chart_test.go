package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor(t *testing.T) {
	for _, p := range Periods() {
		_, err := WindowFor(p)
		assert.NoError(t, err, p)
	}
	_, err := WindowFor("2h")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
	assert.Contains(t, err.Error(), "1d, 1wk, 1mo")
}

func TestWindowRequest(t *testing.T) {
	w, err := WindowFor("1wk")
	require.NoError(t, err)

	assert.Equal(t, HistoryRequest{Range: "7d", Interval: "30m"}, w.Request(time.Time{}))

	req := w.Request(time.Date(2025, 3, 13, 17, 0, 0, 0, kst))
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, kst), req.End)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, kst), req.Start)
	assert.Equal(t, "30m", req.Interval)
	assert.Empty(t, req.Range)

	w, _ = WindowFor("1y")
	req = w.Request(time.Date(2025, 3, 13, 0, 0, 0, 0, kst))
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, kst), req.Start)
}

func TestResampleWeekly(t *testing.T) {
	candles := []Candle{
		// Wednesday, out of order on purpose
		{Time: day(2025, 3, 12), Open: 12, High: 15, Low: 11, Close: 14, Volume: 30},
		{Time: day(2025, 3, 10), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 10},
		{Time: day(2025, 3, 11), Open: 10.5, High: 13, Low: 8, Close: 12, Volume: 20},
		{Time: day(2025, 3, 17), Open: 14, High: 16, Low: 13, Close: 15, Volume: 5},
	}
	out := Resample(candles, Weekly)
	require.Len(t, out, 2)
	assert.Equal(t, Candle{Time: day(2025, 3, 10), Open: 10, High: 15, Low: 8, Close: 14, Volume: 60}, out[0])
	assert.Equal(t, Candle{Time: day(2025, 3, 17), Open: 14, High: 16, Low: 13, Close: 15, Volume: 5}, out[1])

	assert.Nil(t, Resample(nil, Weekly))
}

func TestResampleMonthly(t *testing.T) {
	out := Resample([]Candle{
		closeAt(day(2025, 1, 30), 1),
		closeAt(day(2025, 2, 3), 2),
		closeAt(day(2025, 2, 27), 3),
	}, Monthly)
	require.Len(t, out, 2)
	assert.Equal(t, day(2025, 2, 1), out[1].Time)
	assert.Equal(t, 2.0, out[1].Open)
	assert.Equal(t, 3.0, out[1].Close)
}

func TestChart(t *testing.T) {
	src := newFakeSource()
	src.candles["AAPL"] = []Candle{
		closeAt(day(2025, 3, 10), 1),
		closeAt(day(2025, 3, 11), 2),
		closeAt(day(2025, 3, 18), 3),
	}

	out, err := Chart(context.Background(), src, "AAPL", "1mo", time.Time{})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, "1mo", src.requests["AAPL"].Range)

	out, err = Chart(context.Background(), src, "AAPL", "5y", time.Time{})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = Chart(context.Background(), src, "AAPL", "bogus", time.Time{})
	assert.ErrorIs(t, err, ErrUnknownPeriod)

	_, err = Chart(context.Background(), src, "MSFT", "1mo", time.Time{})
	assert.ErrorIs(t, err, ErrNoData)
}
