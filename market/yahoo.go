package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultChartURL  = "https://query2.finance.yahoo.com/v8/finance/chart"
	DefaultSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"

	userAgent = "Mozilla/5.0 (compatible; portfolio-dashboard/1.0)"
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooClient reads bars from the Yahoo Finance v8 chart endpoint.
type YahooClient struct {
	cli *resty.Client
}

func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultChartURL
	}
	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &YahooClient{cli: cli}
}

func (y *YahooClient) History(ctx context.Context, symbol string, req HistoryRequest) ([]Candle, error) {
	params := map[string]string{"interval": req.Interval}
	if req.Interval == "" {
		params["interval"] = "1d"
	}
	if req.Range != "" {
		params["range"] = req.Range
	} else {
		params["period1"] = strconv.FormatInt(req.Start.Unix(), 10)
		params["period2"] = strconv.FormatInt(req.End.Unix(), 10)
	}

	var raw chartResponse
	resp, err := y.cli.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		SetResult(&raw).
		SetError(&raw).
		Get("/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo chart %s: http %d", symbol, resp.StatusCode())
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %w", symbol, raw.Chart.Error.Description, ErrNoData)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}

	r := raw.Chart.Result[0]
	q := r.Indicators.Quote[0]
	candles := make([]Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		c, ok := at(q.Close, i)
		if !ok {
			continue
		}
		candle := Candle{Time: time.Unix(ts, 0).UTC(), Close: c, Open: c, High: c, Low: c}
		if v, ok := at(q.Open, i); ok {
			candle.Open = v
		}
		if v, ok := at(q.High, i); ok {
			candle.High = v
		}
		if v, ok := at(q.Low, i); ok {
			candle.Low = v
		}
		if v, ok := at(q.Volume, i); ok {
			candle.Volume = v
		}
		candles = append(candles, candle)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	return candles, nil
}

// at returns xs[i] when it exists and is not null.
func at[T any](xs []*T, i int) (T, bool) {
	var zero T
	if i >= len(xs) || xs[i] == nil {
		return zero, false
	}
	return *xs[i], true
}
