package handlers

import (
	"errors"
	"net/http"

	"portfolio-dashboard/market"
	"portfolio-dashboard/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type chartResponse struct {
	Name    string          `json:"name"`
	Ticker  string          `json:"ticker"`
	Period  string          `json:"period"`
	EndDate string          `json:"end_date,omitempty"`
	Candles []market.Candle `json:"candles"`
	Message string          `json:"message,omitempty"`
}

// GetChart returns the candles of one of the user's stocks for a period
// code. A source without data or failing gives an empty series with a
// message rather than an error status.
func (h *Handler) GetChart(c *gin.Context) {
	stock, err := h.Store.FindStock(middleware.UserID(c), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	period := c.Param("period")
	if _, err := market.WindowFor(period); err != nil {
		writeError(c, err)
		return
	}

	resp := chartResponse{Name: stock.Name, Ticker: stock.Ticker, Period: period, Candles: []market.Candle{}}
	end, ok := parseDate(c.Query("end_date"))
	if ok {
		resp.EndDate = end.Format(dateLayout)
	}
	if stock.Ticker == "" {
		resp.Message = "no ticker for this stock"
		c.JSON(http.StatusOK, resp)
		return
	}

	candles, err := market.Chart(c.Request.Context(), h.Charts, stock.Ticker, period, end)
	switch {
	case errors.Is(err, market.ErrNoData):
		resp.Message = "no data"
	case err != nil:
		log.WithFields(log.Fields{"ticker": stock.Ticker, "period": period, "error": err}).Warnln("chart load failed")
		resp.Message = "failed to load data"
	default:
		resp.Candles = candles
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SearchTicker(c *gin.Context) {
	c.JSON(http.StatusOK, h.Search.Search(c.Request.Context(), c.Query("q")))
}
