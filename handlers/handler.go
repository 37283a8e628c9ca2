package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfolio-dashboard/database"
	"portfolio-dashboard/market"
	"portfolio-dashboard/portfolio"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PriceResolver resolves market prices and FX rates for an as-of date.
type PriceResolver interface {
	Resolve(ctx context.Context, asOf time.Time, instruments []market.Instrument) market.Snapshot
}

// TickerSearcher is the autocomplete pass-through.
type TickerSearcher interface {
	Search(ctx context.Context, q string) []market.SearchHit
}

// Handler serves the dashboard API for the user resolved by the UserToken
// middleware.
type Handler struct {
	Store        *database.Store
	Prices       PriceResolver
	Charts       market.Source
	Search       TickerSearcher
	Watchlist    []WatchItem
	HomeCurrency string
	InitialCash  decimal.Decimal
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/dashboard", h.Dashboard)

	r.GET("/stocks", h.ListStocks)
	r.POST("/stocks", h.AddStock)
	r.DELETE("/stocks/:name", h.DeleteStock)

	r.GET("/transactions", h.ListTransactions)
	r.POST("/transactions", h.AddTransaction)
	r.POST("/transactions/batch", h.AddTransactions)
	r.DELETE("/transactions", h.DeleteTransactions)
	r.POST("/reset", h.Reset)

	r.GET("/chart/:name/:period", h.GetChart)
	r.GET("/search_ticker", h.SearchTicker)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrStockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrInvalidTransaction), errors.Is(err, market.ErrUnknownPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portfolio.ErrOversell):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.WithFields(log.Fields{"path": c.FullPath(), "error": err}).Errorln("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
