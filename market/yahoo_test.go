package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{
	"timestamp":[1741910400,1741996800,1742256000],
	"indicators":{"quote":[{
		"open":[100.5,null,102.0],
		"high":[101.0,null,103.5],
		"low":[99.0,null,101.25],
		"close":[100.0,null,103.0],
		"volume":[1200,null,900]
	}]}
}],"error":null}}`

func TestYahooHistory(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	y := NewYahooClient(srv.URL, time.Second)
	start := day(2025, 3, 4)
	end := day(2025, 3, 15)
	candles, err := y.History(context.Background(), "AAPL", HistoryRequest{Start: start, End: end, Interval: "1d"})
	require.NoError(t, err)

	assert.Equal(t, "/AAPL", gotPath)
	assert.Equal(t, "1d", gotQuery["interval"])
	assert.Equal(t, "1741046400", gotQuery["period1"])
	assert.Equal(t, "1741996800", gotQuery["period2"])
	assert.NotContains(t, gotQuery, "range")

	require.Len(t, candles, 2, "null rows are skipped")
	assert.Equal(t, time.Unix(1741910400, 0).UTC(), candles[0].Time)
	assert.Equal(t, Candle{Time: candles[0].Time, Open: 100.5, High: 101, Low: 99, Close: 100, Volume: 1200}, candles[0])
	assert.Equal(t, 103.0, candles[1].Close)
}

func TestYahooHistoryRange(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, time.Second).History(context.Background(), "005930.KS", HistoryRequest{Range: "7d", Interval: "30m"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "range=7d")
	assert.Contains(t, gotQuery, "interval=30m")
	assert.NotContains(t, gotQuery, "period1")
}

func TestYahooHistoryNoData(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"not found":    {http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		"chart error":  {http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Data doesn't exist"}}}`},
		"empty result": {http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		"all null":     {http.StatusOK, `{"chart":{"result":[{"timestamp":[1741910400],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewYahooClient(srv.URL, time.Second).History(context.Background(), "XXX", HistoryRequest{Range: "1d"})
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestYahooHistoryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, time.Second).History(context.Background(), "AAPL", HistoryRequest{Range: "1d"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestYahooHistoryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, 20*time.Millisecond).History(context.Background(), "AAPL", HistoryRequest{Range: "1d"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}
