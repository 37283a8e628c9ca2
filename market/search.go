package market

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// SearchHit is one instrument returned by ticker autocomplete.
type SearchHit struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	Exchange  string `json:"exchange"`
	Type      string `json:"type"`
}

// Searcher passes autocomplete queries through to the Yahoo search API.
type Searcher struct {
	cli *resty.Client
	url string
}

func NewSearcher(url string, timeout time.Duration) *Searcher {
	if url == "" {
		url = DefaultSearchURL
	}
	cli := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Searcher{cli: cli, url: url}
}

// Search returns equities and ETFs matching q. Failures are logged and
// reported as no hits.
func (s *Searcher) Search(ctx context.Context, q string) []SearchHit {
	hits := []SearchHit{}
	q = strings.TrimSpace(q)
	if q == "" {
		return hits
	}

	var raw struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
			Exchange  string `json:"exchange"`
			QuoteType string `json:"quoteType"`
		} `json:"quotes"`
	}
	resp, err := s.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"q": q, "quotesCount": "10", "newsCount": "0"}).
		SetResult(&raw).
		Get(s.url)
	if err != nil || resp.IsError() {
		fields := log.Fields{"q": q}
		if err != nil {
			fields["error"] = err
		} else {
			fields["status"] = resp.StatusCode()
		}
		log.WithFields(fields).Warnln("ticker search failed")
		return hits
	}

	for _, quote := range raw.Quotes {
		if quote.QuoteType != "EQUITY" && quote.QuoteType != "ETF" {
			continue
		}
		name := quote.ShortName
		if name == "" {
			name = quote.LongName
		}
		if name == "" {
			name = quote.Symbol
		}
		hits = append(hits, SearchHit{
			Symbol:    quote.Symbol,
			ShortName: name,
			Exchange:  quote.Exchange,
			Type:      quote.QuoteType,
		})
	}
	return hits
}
