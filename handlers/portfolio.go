package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"portfolio-dashboard/database"
	"portfolio-dashboard/middleware"
	"portfolio-dashboard/models"
	"portfolio-dashboard/portfolio"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StockInput struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Ticker   string `json:"ticker" form:"ticker"`
	Currency string `json:"currency" form:"currency" binding:"omitempty,len=3"`
}

type TransactionInput struct {
	Name     string          `json:"name" form:"name"`
	Ticker   string          `json:"ticker" form:"ticker"`
	Currency string          `json:"currency" form:"currency" binding:"omitempty,len=3"`
	Type     string          `json:"type" form:"type" binding:"required"`
	Price    decimal.Decimal `json:"price" form:"price"`
	Quantity int64           `json:"quantity" form:"quantity" binding:"omitempty,min=1"`
}

func (h *Handler) ListStocks(c *gin.Context) {
	stocks, err := h.Store.ListStocks(middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *Handler) AddStock(c *gin.Context) {
	var input StockInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock, err := h.Store.FindOrCreateStock(middleware.UserID(c), input.Name, input.Ticker, input.Currency)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

func (h *Handler) DeleteStock(c *gin.Context) {
	if err := h.Store.DeleteStock(middleware.UserID(c), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock deleted successfully"})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	txs, err := h.Store.ListTransactions(middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) AddTransaction(c *gin.Context) {
	var input TransactionInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.UserID(c)

	var tx models.Transaction
	err := h.Store.Atomic(func(st *database.Store) error {
		ledger, err := st.ListTransactions(userID)
		if err != nil {
			return err
		}
		if tx, err = buildTransaction(st, userID, input, ledger); err != nil {
			return err
		}
		return st.CreateTransaction(userID, &tx)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// AddTransactions imports a batch. Sells are checked against the ledger plus
// the earlier entries of the same batch. Nothing is stored, stocks included,
// unless every entry is valid.
func (h *Handler) AddTransactions(c *gin.Context) {
	var inputs []TransactionInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no transactions"})
		return
	}
	userID := middleware.UserID(c)

	batch := make([]models.Transaction, 0, len(inputs))
	err := h.Store.Atomic(func(st *database.Store) error {
		ledger, err := st.ListTransactions(userID)
		if err != nil {
			return err
		}
		for i, input := range inputs {
			tx, err := buildTransaction(st, userID, input, ledger)
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			batch = append(batch, tx)
			ledger = append(ledger, tx)
		}
		return st.CreateTransactions(userID, batch)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(batch)})
}

// buildTransaction turns input into a transaction. Buys find or create their
// stock by name and sells only look it up; cash moves carry no stock and
// always have quantity 1. Callers run it inside Store.Atomic.
func buildTransaction(st *database.Store, userID string, input TransactionInput, ledger []models.Transaction) (models.Transaction, error) {
	typ := models.TxType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if !typ.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: type must be one of BUY, SELL, DEPOSIT, WITHDRAW", database.ErrInvalidTransaction)
	}
	if !input.Price.IsPositive() {
		return models.Transaction{}, fmt.Errorf("%w: price must be positive", database.ErrInvalidTransaction)
	}
	tx := models.Transaction{Type: typ, Price: input.Price, Quantity: 1, Date: models.Now()}

	name := strings.TrimSpace(input.Name)
	if !typ.IsTrade() {
		if name != "" {
			return models.Transaction{}, fmt.Errorf("%w: %s cannot reference a stock", database.ErrInvalidTransaction, typ)
		}
		return tx, nil
	}

	if name == "" {
		return models.Transaction{}, fmt.Errorf("%w: %s needs a stock name", database.ErrInvalidTransaction, typ)
	}
	if input.Quantity < 1 {
		return models.Transaction{}, fmt.Errorf("%w: quantity must be at least 1", database.ErrInvalidTransaction)
	}

	var stock models.Stock
	var err error
	if typ == models.TxSell {
		stock, err = st.FindStock(userID, name)
		if errors.Is(err, database.ErrStockNotFound) {
			return models.Transaction{}, fmt.Errorf("%s: %w", name, portfolio.ErrOversell)
		}
		if err != nil {
			return models.Transaction{}, err
		}
		if err := portfolio.CheckSell(ledger, stock.ID, input.Quantity); err != nil {
			return models.Transaction{}, fmt.Errorf("%s: %w", name, err)
		}
	} else if stock, err = st.FindOrCreateStock(userID, name, input.Ticker, input.Currency); err != nil {
		return models.Transaction{}, err
	}
	tx.StockID = &stock.ID
	tx.Quantity = input.Quantity
	return tx, nil
}

func (h *Handler) DeleteTransactions(c *gin.Context) {
	n, err := h.Store.DeleteTransactions(middleware.UserID(c), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *Handler) Reset(c *gin.Context) {
	if err := h.Store.Reset(middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio reset"})
}
