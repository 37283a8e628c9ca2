package market

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeSource serves canned candles per symbol and records the requests.
type fakeSource struct {
	mu       sync.Mutex
	candles  map[string][]Candle
	errs     map[string]error
	requests map[string]HistoryRequest
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		candles:  make(map[string][]Candle),
		errs:     make(map[string]error),
		requests: make(map[string]HistoryRequest),
	}
}

func (f *fakeSource) History(_ context.Context, symbol string, req HistoryRequest) ([]Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[symbol] = req
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	cs, ok := f.candles[symbol]
	if !ok {
		return nil, ErrNoData
	}
	return cs, nil
}

var errBoom = errors.New("connection reset")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func closeAt(t time.Time, c float64) Candle {
	return Candle{Time: t, Open: c, High: c, Low: c, Close: c}
}
