package portfolio

import (
	"errors"
	"fmt"

	"portfolio-dashboard/models"

	"github.com/shopspring/decimal"
)

// ErrOversell is returned when a sell exceeds the quantity currently held.
var ErrOversell = errors.New("sell quantity exceeds holding")

// Holding is the net position of one stock.
type Holding struct {
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// Holdings folds the ledger for a single stock. Quantity is bought minus sold;
// average cost only reflects BUY entries and is zero when nothing was bought.
func Holdings(txs []models.Transaction, stockID uint) Holding {
	var bought, sold int64
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.StockID == nil || *tx.StockID != stockID {
			continue
		}
		switch tx.Type {
		case models.TxBuy:
			bought += tx.Quantity
			spent = spent.Add(tx.Amount())
		case models.TxSell:
			sold += tx.Quantity
		}
	}

	h := Holding{Quantity: bought - sold, AverageCost: decimal.Zero}
	if bought != 0 {
		h.AverageCost = spent.Div(decimal.NewFromInt(bought))
	}
	return h
}

// CheckSell rejects a sell of qty units that would leave a negative holding.
func CheckSell(txs []models.Transaction, stockID uint, qty int64) error {
	held := Holdings(txs, stockID).Quantity
	if qty > held {
		return fmt.Errorf("%w: holding %d, selling %d", ErrOversell, held, qty)
	}
	return nil
}
