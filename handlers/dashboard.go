package handlers

import (
	"net/http"
	"time"

	"portfolio-dashboard/market"
	"portfolio-dashboard/middleware"
	"portfolio-dashboard/models"
	"portfolio-dashboard/portfolio"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WatchItem is an instrument whose market info is shown on the dashboard
// even when the user holds no stock of that name.
type WatchItem struct {
	Name     string
	Ticker   string
	Currency string
}

// DefaultWatchlist is what a fresh dashboard shows before any stock is added.
var DefaultWatchlist = []WatchItem{
	{Name: "삼성전자", Ticker: "005930.KS", Currency: "KRW"},
	{Name: "애플", Ticker: "AAPL", Currency: "USD"},
	{Name: "테슬라", Ticker: "TSLA", Currency: "USD"},
	{Name: "알파벳A", Ticker: "GOOGL", Currency: "USD"},
	{Name: "SK하이닉스", Ticker: "000660.KS", Currency: "KRW"},
}

type marketInfo struct {
	Ticker    string          `json:"ticker"`
	Currency  string          `json:"currency"`
	Available bool            `json:"available"`
	Price     decimal.Decimal `json:"price"`
	HomePrice decimal.Decimal `json:"home_price"`
	Display   string          `json:"display"`
}

type positionDisplay struct {
	Value     string `json:"value"`
	Profit    string `json:"profit"`
	ProfitPct string `json:"profit_pct"`
}

type dashboardDisplay struct {
	TotalAsset string                     `json:"total_asset"`
	Cash       string                     `json:"cash"`
	TotalValue string                     `json:"total_value"`
	USDRate    string                     `json:"usd_rate"`
	Positions  map[string]positionDisplay `json:"positions"`
}

type dashboardResponse struct {
	TargetDate  string                `json:"target_date"`
	IsBacktest  bool                  `json:"is_backtest"`
	LastUpdated time.Time             `json:"last_updated"`
	USDRate     decimal.Decimal       `json:"usd_rate"`
	FXFallback  bool                  `json:"fx_fallback"`
	Stocks      []models.Stock        `json:"stocks"`
	MarketInfo  map[string]marketInfo `json:"market_info"`
	Summary     portfolio.Summary     `json:"summary"`
	Display     dashboardDisplay      `json:"display"`
}

// Dashboard values the user's portfolio as of target_date (today when
// missing or malformed). Market data problems degrade the values; they never
// fail the request.
func (h *Handler) Dashboard(c *gin.Context) {
	userID := middleware.UserID(c)
	asOf, backtest := asOfDate(c.Query("target_date"), time.Now())

	stocks, err := h.Store.ListStocks(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	txs, err := h.Store.ListTransactions(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	watched := make([]WatchItem, 0, len(stocks)+len(h.Watchlist))
	owned := make(map[string]bool, len(stocks))
	for _, s := range stocks {
		watched = append(watched, WatchItem{Name: s.Name, Ticker: s.Ticker, Currency: s.Currency})
		owned[s.Name] = true
	}
	for _, w := range h.Watchlist {
		if !owned[w.Name] {
			watched = append(watched, w)
		}
	}

	instruments := make([]market.Instrument, 0, len(watched))
	seen := make(map[string]bool, len(watched))
	for _, w := range watched {
		if w.Ticker != "" && !seen[w.Ticker] {
			seen[w.Ticker] = true
			instruments = append(instruments, market.Instrument{Ticker: w.Ticker, Currency: w.Currency})
		}
	}
	snap := h.Prices.Resolve(c.Request.Context(), asOf, instruments)
	rates := portfolio.Rates(snap.Rates)

	sum := portfolio.Value(portfolio.ValuationInput{
		AsOf:         asOf,
		HomeCurrency: h.HomeCurrency,
		InitialCash:  h.InitialCash,
		Stocks:       stocks,
		Transactions: txs,
		Prices:       snap.Prices(),
		Rates:        rates,
	})

	resp := dashboardResponse{
		TargetDate:  asOf.Format(dateLayout),
		IsBacktest:  backtest,
		LastUpdated: models.Now(),
		USDRate:     snap.USDRate.Round(2),
		FXFallback:  snap.FXFallback,
		Stocks:      stocks,
		MarketInfo:  make(map[string]marketInfo, len(watched)),
		Summary:     sum,
		Display: dashboardDisplay{
			TotalAsset: portfolio.Format(sum.NetWorth, h.HomeCurrency),
			Cash:       portfolio.Format(sum.Cash, h.HomeCurrency),
			TotalValue: portfolio.Format(sum.TotalStockValue, h.HomeCurrency),
			USDRate:    snap.USDRate.StringFixed(2),
			Positions:  make(map[string]positionDisplay, len(sum.Positions)),
		},
	}

	for _, w := range watched {
		info := marketInfo{Ticker: w.Ticker, Currency: w.Currency, Price: decimal.Zero, HomePrice: decimal.Zero}
		if q, ok := snap.Quotes[w.Ticker]; ok && w.Ticker != "" {
			info.Available = true
			info.Price = portfolio.Round(q.Price, w.Currency)
			info.HomePrice = q.Price.Mul(rates.For(w.Currency))
			info.Display = portfolio.Format(q.Price, w.Currency)
		}
		resp.MarketInfo[w.Name] = info
	}
	for _, p := range sum.Positions {
		resp.Display.Positions[p.Name] = positionDisplay{
			Value:     portfolio.Format(p.CurrentValue, h.HomeCurrency),
			Profit:    portfolio.FormatSigned(p.UnrealizedProfit, h.HomeCurrency),
			ProfitPct: portfolio.FormatPct(p.ProfitPct),
		}
	}

	c.JSON(http.StatusOK, resp)
}
