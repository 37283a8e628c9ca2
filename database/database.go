package database

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"portfolio-dashboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidData        = errors.New("invalid data, expected slice")
	ErrStockNotFound      = errors.New("stock not found")
)

// AutoMigrate creates or updates the stocks and transactions tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Stock{}, &models.Transaction{})
}

// CreateInBatches inserts a slice of rows in chunks of batchSize inside one
// database transaction.
func CreateInBatches(db *gorm.DB, data interface{}, batchSize int) error {
	if batchSize <= 0 {
		return ErrInvalidTransaction
	}

	slice := reflect.ValueOf(data)
	if slice.Kind() != reflect.Slice {
		return ErrInvalidData
	}

	return db.Transaction(func(tx *gorm.DB) error {
		total := slice.Len()
		for i := 0; i < total; i += batchSize {
			end := i + batchSize
			if end > total {
				end = total
			}

			chunk := slice.Slice(i, end).Interface()
			if err := tx.Create(chunk).Error; err != nil {
				return fmt.Errorf("batch insert failed: %w", err)
			}
		}
		return nil
	})
}

// Store is the per-user persistence of stocks and transactions. Every query
// is scoped by user id.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomic runs fn against a Store bound to a single database transaction.
// Everything fn writes is rolled back when it returns an error.
func (s *Store) Atomic(fn func(*Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) ListStocks(userID string) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (s *Store) FindStock(userID, name string) (models.Stock, error) {
	var stock models.Stock
	err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Stock{}, fmt.Errorf("%w: %q", ErrStockNotFound, name)
	}
	if err != nil {
		return models.Stock{}, fmt.Errorf("find stock %q: %w", name, err)
	}
	return stock, nil
}

// FindOrCreateStock returns the user's stock called name, creating it when
// missing. It is idempotent: ticker and currency of an existing stock are only
// filled in when they were empty. Two concurrent creations of the same name
// resolve to the same row through the (user_id, name) unique index.
func (s *Store) FindOrCreateStock(userID, name, ticker, currency string) (models.Stock, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Stock{}, fmt.Errorf("%w: stock name is required", ErrInvalidTransaction)
	}
	stock := models.Stock{
		UserID:   userID,
		Name:     name,
		Ticker:   strings.TrimSpace(ticker),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&stock).Error
	if err != nil {
		return models.Stock{}, fmt.Errorf("create stock %q: %w", name, err)
	}

	existing, err := s.FindStock(userID, name)
	if err != nil {
		return models.Stock{}, err
	}

	updates := map[string]interface{}{}
	if existing.Ticker == "" && stock.Ticker != "" {
		updates["ticker"] = stock.Ticker
	}
	if existing.Currency == "" && stock.Currency != "" {
		updates["currency"] = stock.Currency
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.Stock{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return models.Stock{}, fmt.Errorf("update stock %q: %w", name, err)
		}
		if v, ok := updates["ticker"]; ok {
			existing.Ticker = v.(string)
		}
		if v, ok := updates["currency"]; ok {
			existing.Currency = v.(string)
		}
	}
	return existing, nil
}

// DeleteStock removes the stock and all of its transactions.
func (s *Store) DeleteStock(userID, name string) error {
	stock, err := s.FindStock(userID, name)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND stock_id = ?", userID, stock.ID).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("delete transactions of %q: %w", name, err)
		}
		if err := tx.Delete(&stock).Error; err != nil {
			return fmt.Errorf("delete stock %q: %w", name, err)
		}
		return nil
	})
}

func (s *Store) CreateTransaction(userID string, t *models.Transaction) error {
	t.UserID = userID
	if err := validate(t); err != nil {
		return err
	}
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// CreateTransactions stores a batch atomically.
func (s *Store) CreateTransactions(userID string, txs []models.Transaction) error {
	for i := range txs {
		txs[i].UserID = userID
		if err := validate(&txs[i]); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return CreateInBatches(s.db, txs, 100)
}

// ListTransactions returns the user's ledger, oldest first.
func (s *Store) ListTransactions(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Order("date, id").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	// sqlite compares dates as text, which breaks across zone offsets
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// DeleteTransactions removes the transactions of one stock, or every
// transaction of the user when stockName is empty.
func (s *Store) DeleteTransactions(userID, stockName string) (int64, error) {
	q := s.db.Where("user_id = ?", userID)
	if stockName != "" {
		stock, err := s.FindStock(userID, stockName)
		if err != nil {
			return 0, err
		}
		q = q.Where("stock_id = ?", stock.ID)
	}
	res := q.Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Reset wipes the user's ledger and stocks.
func (s *Store) Reset(userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("reset transactions: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Stock{}).Error; err != nil {
			return fmt.Errorf("reset stocks: %w", err)
		}
		return nil
	})
}

func validate(t *models.Transaction) error {
	switch {
	case t.UserID == "":
		return fmt.Errorf("%w: missing user", ErrInvalidTransaction)
	case !t.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	case t.Type.IsTrade() && t.StockID == nil:
		return fmt.Errorf("%w: %s needs a stock", ErrInvalidTransaction, t.Type)
	case !t.Type.IsTrade() && t.StockID != nil:
		return fmt.Errorf("%w: %s cannot reference a stock", ErrInvalidTransaction, t.Type)
	case t.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidTransaction)
	case t.Price.IsNegative():
		return fmt.Errorf("%w: negative price", ErrInvalidTransaction)
	}
	if t.Date.IsZero() {
		t.Date = models.Now()
	}
	return nil
}
