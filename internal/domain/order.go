package domain

import "github.com/shopspring/decimal"

// Order represents a trading order handed to the execution layer.
type Order struct {
	ID           string
	Symbol       string
	Side         string          // "BUY", "SELL"
	Type         string          // "LIMIT", "MARKET"
	Price        decimal.Decimal // Limit price. Zero for market orders.
	Qty          decimal.Decimal
	Status       string // "NEW", "PARTIALLY_FILLED", "FILLED", "CANCELED"
	CreatedUnixM int64  // Unix Milliseconds
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeLimit  = "LIMIT"
	OrderTypeMarket = "MARKET"

	OrderStatusNew             = "NEW"
	OrderStatusPartiallyFilled = "PARTIALLY_FILLED"
	OrderStatusFilled          = "FILLED"
	OrderStatusCanceled        = "CANCELED"
)

// IsOpen checks if the order is still active.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusPartiallyFilled
}

// Fill records one executed trade.
type Fill struct {
	OrderID string
	Symbol  string
	Side    string
	Price   decimal.Decimal
	Qty     decimal.Decimal
	Fee     decimal.Decimal
	Ts      int64
}
