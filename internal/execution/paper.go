package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
)

// PaperExecution simulates market-order fills against the last known price.
// Short positions are allowed (margin checks are out of scope); buys are
// limited by available cash. All accounting uses decimals, never floats.
type PaperExecution struct {
	mu        sync.Mutex
	feeRate   decimal.Decimal // e.g. 0.001 for 10 bps
	cash      decimal.Decimal
	positions map[string]decimal.Decimal // signed base quantity per symbol
	prices    map[string]decimal.Decimal
	fills     []domain.Fill
}

// NewPaperExecution creates a paper broker charging feeRate per fill notional.
func NewPaperExecution(feeRate decimal.Decimal) *PaperExecution {
	return &PaperExecution{
		feeRate:   feeRate,
		positions: make(map[string]decimal.Decimal),
		prices:    make(map[string]decimal.Decimal),
	}
}

// Deposit credits quote-currency cash.
func (p *PaperExecution) Deposit(amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cash = p.cash.Add(amount)
}

// UpdatePrice sets the reference fill price for a symbol.
func (p *PaperExecution) UpdatePrice(symbol string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
}

// ExecuteOrder fills a market order immediately at the reference price.
func (p *PaperExecution) ExecuteOrder(_ context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !order.IsOpen() {
		return fmt.Errorf("order %s is not open (status %s)", order.ID, order.Status)
	}
	if order.Type != domain.OrderTypeMarket {
		return fmt.Errorf("paper execution supports market orders only, got %s", order.Type)
	}
	price, ok := p.prices[order.Symbol]
	if !ok || price.IsZero() {
		return fmt.Errorf("%w for %s", domain.ErrNoPrice, order.Symbol)
	}
	if !order.Qty.IsPositive() {
		return fmt.Errorf("order quantity must be positive, got %s", order.Qty)
	}

	notional := price.Mul(order.Qty)
	fee := notional.Mul(p.feeRate)

	switch order.Side {
	case domain.SideBuy:
		cost := notional.Add(fee)
		if cost.GreaterThan(p.cash) {
			return fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientBalance, cost, p.cash)
		}
		p.cash = p.cash.Sub(cost)
		p.positions[order.Symbol] = p.positions[order.Symbol].Add(order.Qty)
	case domain.SideSell:
		p.cash = p.cash.Add(notional.Sub(fee))
		p.positions[order.Symbol] = p.positions[order.Symbol].Sub(order.Qty)
	default:
		return fmt.Errorf("unknown order side %s", order.Side)
	}

	p.fills = append(p.fills, domain.Fill{
		OrderID: order.ID,
		Symbol:  order.Symbol,
		Side:    order.Side,
		Price:   price,
		Qty:     order.Qty,
		Fee:     fee,
		Ts:      order.CreatedUnixM,
	})
	return nil
}

// Position returns the signed quantity held for a symbol.
func (p *PaperExecution) Position(symbol string) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions[symbol]
}

// Cash returns the current quote-currency balance.
func (p *PaperExecution) Cash() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// Equity values all open positions at the reference prices plus cash.
func (p *PaperExecution) Equity() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.cash
	for symbol, qty := range p.positions {
		if price, ok := p.prices[symbol]; ok {
			total = total.Add(qty.Mul(price))
		}
	}
	return total
}

// Fills returns a copy of the fill log.
func (p *PaperExecution) Fills() []domain.Fill {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

var _ domain.Execution = (*PaperExecution)(nil)
