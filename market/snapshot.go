package market

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const lookbackDays = 10

// Instrument is a ticker together with the currency it trades in.
type Instrument struct {
	Ticker   string
	Currency string
}

// Quote is the close price of a ticker on Date.
type Quote struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
	Date   time.Time       `json:"date"`
}

// Snapshot holds the prices and FX rates resolved for one as-of date.
// Tickers without a usable close are listed in Missing.
type Snapshot struct {
	AsOf       time.Time                  `json:"as_of"`
	Quotes     map[string]Quote           `json:"quotes"`
	Missing    []string                   `json:"missing,omitempty"`
	Rates      map[string]decimal.Decimal `json:"rates"`
	USDRate    decimal.Decimal            `json:"usd_rate"`
	FXFallback bool                       `json:"fx_fallback"`
}

// Prices returns the close of every resolved ticker.
func (s Snapshot) Prices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.Quotes))
	for t, q := range s.Quotes {
		out[t] = q.Price
	}
	return out
}

// Resolver looks up the latest close on or before an as-of date for a set of
// instruments, and the rates needed to convert them to the home currency.
type Resolver struct {
	src         Source
	home        string
	fallbackUSD decimal.Decimal
	timeout     time.Duration
}

func NewResolver(src Source, home string, fallbackUSD decimal.Decimal, timeout time.Duration) *Resolver {
	return &Resolver{
		src:         src,
		home:        strings.ToUpper(home),
		fallbackUSD: fallbackUSD,
		timeout:     timeout,
	}
}

// Resolve never fails. A ticker with no data is reported in Missing; a USD
// rate that cannot be resolved falls back to the configured constant; any
// other foreign currency without a rate is left out of Rates.
func (r *Resolver) Resolve(ctx context.Context, asOf time.Time, instruments []Instrument) Snapshot {
	day := now.With(asOf).BeginningOfDay()
	start := day.AddDate(0, 0, -lookbackDays)
	end := day.AddDate(0, 0, 1)

	snap := Snapshot{
		AsOf:   day,
		Quotes: make(map[string]Quote),
		Rates:  make(map[string]decimal.Decimal),
	}

	currencies := map[string]bool{"USD": true}
	tickers := make(map[string]bool)
	for _, in := range instruments {
		if in.Ticker != "" {
			tickers[in.Ticker] = true
		}
		if c := strings.ToUpper(in.Currency); c != "" {
			currencies[c] = true
		}
	}
	delete(currencies, r.home)

	for cur := range currencies {
		pair := cur + r.home + "=X"
		res := r.Close(ctx, pair, start, end)
		if res.Status == Available {
			snap.Rates[cur] = res.Value.Price
			continue
		}
		fields := log.Fields{"pair": pair, "as_of": day.Format("2006-01-02"), "status": res.Status}
		if res.Err != nil {
			fields["error"] = res.Err
		}
		if cur == "USD" {
			log.WithFields(fields).Warnln("fx rate unavailable, using fallback")
			snap.Rates[cur] = r.fallbackUSD
			snap.FXFallback = true
		} else {
			log.WithFields(fields).Warnln("fx rate unavailable, converting 1:1")
		}
	}
	snap.USDRate = snap.Rates["USD"]
	if r.home == "USD" {
		snap.USDRate = decimal.NewFromInt(1)
	}

	for ticker := range tickers {
		res := r.Close(ctx, ticker, start, end)
		if res.Status == Available {
			snap.Quotes[ticker] = res.Value
			continue
		}
		fields := log.Fields{"ticker": ticker, "as_of": day.Format("2006-01-02"), "status": res.Status}
		if res.Err != nil {
			fields["error"] = res.Err
		}
		log.WithFields(fields).Warnln("no price available")
		snap.Missing = append(snap.Missing, ticker)
	}
	sort.Strings(snap.Missing)
	return snap
}

// Close returns the last daily close of symbol inside [start, end).
func (r *Resolver) Close(ctx context.Context, symbol string, start, end time.Time) Result[Quote] {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	candles, err := r.src.History(ctx, symbol, HistoryRequest{Start: start, End: end, Interval: "1d"})
	if errors.Is(err, ErrNoData) {
		return unavailable[Quote](err)
	}
	if err != nil {
		return failed[Quote](err)
	}

	for i := len(candles) - 1; i >= 0; i-- {
		c := candles[i]
		if !c.Time.Before(end) || c.Time.Before(start) || c.Close <= 0 {
			continue
		}
		return ok(Quote{Ticker: symbol, Price: decimal.NewFromFloat(c.Close).Round(4), Date: c.Time})
	}
	return unavailable[Quote](ErrNoData)
}
