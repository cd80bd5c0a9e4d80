package strategy

import (
	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
)

// ActionType defines the type of trading action
type ActionType int

const (
	ActionBuy  ActionType = iota + 1
	ActionSell            // Sell
)

// String returns the string representation of ActionType
func (a ActionType) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Action represents a decision made by the strategy
type Action struct {
	Type   ActionType
	Symbol string
	Qty    decimal.Decimal
}

// Strategy is the interface that all trading strategies must implement.
// It is called synchronously by the Sequencer, once per bar.
type Strategy interface {
	// OnBar is called when a bar sample is received.
	// It returns a list of Actions to be executed.
	OnBar(bar domain.Bar) []Action
}
