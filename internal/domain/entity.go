package domain

import (
	"time"
)

// BarRecord is the persisted WAL entry for one inbound bar event.
// It is the source of replay for backtest sessions.
type BarRecord struct {
	Seq       uint64    `gorm:"primaryKey" json:"seq"`
	Symbol    string    `gorm:"index" json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Ts        int64     `json:"ts"`
	CreatedAt time.Time `json:"created_at"`
}

// StepRecord is the persisted per-bar monitoring record of the learner.
type StepRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Bar         int       `gorm:"index" json:"bar"`
	Phase       string    `json:"phase"`
	Decay       float64   `json:"decay"`
	NodeIndex   int       `json:"node_index"`
	Distance    float64   `json:"distance"`
	ActionIndex int       `json:"action_index"`
	QValue      float64   `json:"q_value"`
	Reward      float64   `json:"reward"`
	CreatedAt   time.Time `json:"created_at"`
}

// FillRecord is the persisted form of an executed fill.
// Decimal amounts are stored as strings to avoid float drift in the DB.
type FillRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"index" json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     string    `json:"price"`
	Qty       string    `json:"qty"`
	Fee       string    `json:"fee"`
	Ts        int64     `json:"ts"`
	CreatedAt time.Time `json:"created_at"`
}

// AppConfig represents user-specific configuration (Key-Value)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
