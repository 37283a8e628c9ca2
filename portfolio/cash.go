package portfolio

import (
	"strings"

	"portfolio-dashboard/models"

	"github.com/shopspring/decimal"
)

// Rates maps a currency code to the number of home-currency units per unit.
type Rates map[string]decimal.Decimal

// For returns the conversion factor for currency. The home currency, an empty
// code and any currency without a known rate convert 1:1.
func (r Rates) For(currency string) decimal.Decimal {
	if rate, ok := r[strings.ToUpper(currency)]; ok && rate.IsPositive() {
		return rate
	}
	return decimal.NewFromInt(1)
}

// RateFunc returns the conversion factor for a stock, or false when the stock
// is unknown.
type RateFunc func(stockID uint) (decimal.Decimal, bool)

// StockRates builds a RateFunc from the user's stocks and the resolved rates.
func StockRates(stocks []models.Stock, rates Rates) RateFunc {
	byID := make(map[uint]string, len(stocks))
	for _, s := range stocks {
		byID[s.ID] = s.Currency
	}
	return func(stockID uint) (decimal.Decimal, bool) {
		cur, ok := byID[stockID]
		if !ok {
			return decimal.Decimal{}, false
		}
		return rates.For(cur), true
	}
}

// Cash replays deposits, withdrawals and trades on top of initial. The result
// is a plain sum and does not depend on the order of txs. Trades whose stock
// cannot be resolved are taken at face value in the home currency.
func Cash(txs []models.Transaction, initial decimal.Decimal, rate RateFunc) decimal.Decimal {
	cash := initial
	for _, tx := range txs {
		switch tx.Type {
		case models.TxDeposit:
			cash = cash.Add(tx.Price)
		case models.TxWithdraw:
			cash = cash.Sub(tx.Price)
		case models.TxBuy:
			cash = cash.Sub(tx.Amount().Mul(tradeRate(tx, rate)))
		case models.TxSell:
			cash = cash.Add(tx.Amount().Mul(tradeRate(tx, rate)))
		}
	}
	return cash
}

func tradeRate(tx models.Transaction, rate RateFunc) decimal.Decimal {
	if tx.StockID == nil || rate == nil {
		return decimal.NewFromInt(1)
	}
	if r, ok := rate(*tx.StockID); ok {
		return r
	}
	return decimal.NewFromInt(1)
}
