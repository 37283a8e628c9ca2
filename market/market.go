// Package market fetches prices and FX rates from the external market-data
// source and turns them into the values the dashboard needs.
package market

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoData        = errors.New("no market data")
	ErrUnknownPeriod = errors.New("unknown chart period")
)

// Candle is one OHLCV bar. Time is the start of the bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// HistoryRequest selects bars either by Range (e.g. "5d") or by the
// half-open [Start, End) interval when Range is empty.
type HistoryRequest struct {
	Start    time.Time
	End      time.Time
	Range    string
	Interval string
}

// Source returns candles for a symbol in ascending time order. It returns
// ErrNoData when the source has nothing for the request.
type Source interface {
	History(ctx context.Context, symbol string, req HistoryRequest) ([]Candle, error)
}

type Status int

const (
	Available Status = iota
	Unavailable
	Failed
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// Result is the outcome of one lookup. Callers pick their own fallback when
// Status is not Available.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func ok[T any](v T) Result[T] { return Result[T]{Status: Available, Value: v} }

func unavailable[T any](err error) Result[T] { return Result[T]{Status: Unavailable, Err: err} }

func failed[T any](err error) Result[T] { return Result[T]{Status: Failed, Err: err} }
