package portfolio

import (
	"sort"
	"time"

	"portfolio-dashboard/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position is the valuation of one held stock in the home currency.
type Position struct {
	StockID          uint            `json:"stock_id"`
	Name             string          `json:"name"`
	Ticker           string          `json:"ticker"`
	Currency         string          `json:"currency"`
	Quantity         int64           `json:"quantity"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	MarketPrice      decimal.Decimal `json:"market_price"`
	FXRate           decimal.Decimal `json:"fx_rate"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	CostBasis        decimal.Decimal `json:"cost_basis"`
	UnrealizedProfit decimal.Decimal `json:"unrealized_profit"`
	ProfitPct        decimal.Decimal `json:"profit_pct"`
}

// NewPosition values qty units bought at avg against the market price, with
// fx converting the stock's currency into the home currency.
func NewPosition(qty int64, avg, price, fx decimal.Decimal) Position {
	q := decimal.NewFromInt(qty)
	value := q.Mul(price).Mul(fx)
	cost := avg.Mul(q).Mul(fx)
	profit := value.Sub(cost)

	pct := decimal.Zero
	if !cost.IsZero() {
		pct = profit.Div(cost).Mul(hundred)
	}
	return Position{
		Quantity:         qty,
		AverageCost:      avg,
		MarketPrice:      price,
		FXRate:           fx,
		CurrentValue:     value,
		CostBasis:        cost,
		UnrealizedProfit: profit,
		ProfitPct:        pct,
	}
}

// ValuationInput is everything needed to value a user's portfolio for one
// as-of date. Prices are keyed by ticker; a missing ticker means no price was
// available.
type ValuationInput struct {
	AsOf         time.Time
	HomeCurrency string
	InitialCash  decimal.Decimal
	Stocks       []models.Stock
	Transactions []models.Transaction
	Prices       map[string]decimal.Decimal
	Rates        Rates
}

// Summary is the net-worth view handed to the presentation layer.
type Summary struct {
	AsOf            time.Time        `json:"as_of"`
	HomeCurrency    string           `json:"home_currency"`
	Positions       []Position       `json:"positions"`
	Holdings        map[string]int64 `json:"holdings"`
	Unpriced        []string         `json:"unpriced,omitempty"`
	Cash            decimal.Decimal  `json:"cash"`
	TotalStockValue decimal.Decimal  `json:"total_stock_value"`
	NetWorth        decimal.Decimal  `json:"net_worth"`
}

// Value computes holdings, cash and net worth. Stocks with no positive
// quantity are left out of the positions, and so are stocks without a price;
// the latter are listed in Unpriced and contribute nothing to the total.
func Value(in ValuationInput) Summary {
	sum := Summary{
		AsOf:            in.AsOf,
		HomeCurrency:    in.HomeCurrency,
		Positions:       []Position{},
		Holdings:        make(map[string]int64, len(in.Stocks)),
		TotalStockValue: decimal.Zero,
	}

	for _, s := range in.Stocks {
		h := Holdings(in.Transactions, s.ID)
		sum.Holdings[s.Name] = h.Quantity
		if h.Quantity <= 0 {
			continue
		}
		price, ok := in.Prices[s.Ticker]
		if !ok {
			sum.Unpriced = append(sum.Unpriced, s.Name)
			continue
		}

		p := NewPosition(h.Quantity, h.AverageCost, price, in.Rates.For(s.Currency))
		p.StockID, p.Name, p.Ticker, p.Currency = s.ID, s.Name, s.Ticker, s.Currency
		sum.Positions = append(sum.Positions, p)
		sum.TotalStockValue = sum.TotalStockValue.Add(p.CurrentValue)
	}
	sort.Slice(sum.Positions, func(i, j int) bool { return sum.Positions[i].Name < sum.Positions[j].Name })
	sort.Strings(sum.Unpriced)

	sum.Cash = Cash(in.Transactions, in.InitialCash, StockRates(in.Stocks, in.Rates))
	sum.NetWorth = sum.Cash.Add(sum.TotalStockValue)
	return sum
}
