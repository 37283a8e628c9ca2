package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// KST is the fixed UTC+9 zone transactions are stamped in.
var KST = time.FixedZone("KST", 9*60*60)

// Now returns the current time in KST.
func Now() time.Time { return time.Now().In(KST) }

type TxType string

const (
	TxBuy      TxType = "BUY"
	TxSell     TxType = "SELL"
	TxDeposit  TxType = "DEPOSIT"
	TxWithdraw TxType = "WITHDRAW"
)

func (t TxType) Valid() bool {
	switch t {
	case TxBuy, TxSell, TxDeposit, TxWithdraw:
		return true
	}
	return false
}

// IsTrade reports whether the transaction moves stock rather than cash only.
func (t TxType) IsTrade() bool { return t == TxBuy || t == TxSell }

// Stock is a user-owned instrument. Name is unique per user.
type Stock struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       string        `gorm:"uniqueIndex:idx_stock_user_name;not null" json:"-"`
	Name         string        `gorm:"uniqueIndex:idx_stock_user_name;not null" json:"name"`
	Ticker       string        `json:"ticker"`
	Currency     string        `gorm:"size:3" json:"currency"`
	CreatedAt    time.Time     `json:"created_at"`
	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// Transaction is immutable once stored. StockID is nil for cash moves.
type Transaction struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	UserID   string          `gorm:"index;not null" json:"-"`
	StockID  *uint           `gorm:"index" json:"stock_id,omitempty"`
	Type     TxType          `gorm:"size:20;not null" json:"type"`
	Price    decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Quantity int64           `gorm:"not null;default:1" json:"quantity"`
	Date     time.Time       `gorm:"index" json:"date"`
}

// Amount is price times quantity in the transaction's own currency.
func (t Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}
