package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"som_trader/internal/domain"
	"som_trader/internal/event"
	"som_trader/internal/learner"
)

// Storage is the SQLite-backed persistence layer. It holds the bar WAL,
// per-bar learner telemetry, executed fills and key-value settings.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at the given path.
func NewStorage(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure-Go SQLite, no cgo
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.BarRecord{},
		&domain.StepRecord{},
		&domain.FillRecord{},
		&domain.AppConfig{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Bar WAL Operations
// ======================================================================================

// SaveBar persists an inbound bar event. Called before state mutation,
// so a write failure must abort processing.
func (s *Storage) SaveBar(ctx context.Context, ev *event.BarEvent) error {
	rec := domain.BarRecord{
		Seq:    ev.Seq,
		Symbol: ev.Symbol,
		Price:  ev.Price,
		Volume: ev.Volume,
		Ts:     ev.Ts,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// LoadBars returns all stored bars for a symbol ordered by sequence.
// This is the replay source for backtest sessions.
func (s *Storage) LoadBars(symbol string) ([]domain.BarRecord, error) {
	var bars []domain.BarRecord
	err := s.db.Where("symbol = ?", symbol).Order("seq asc").Find(&bars).Error
	return bars, err
}

// ======================================================================================
// Telemetry Operations
// ======================================================================================

// SaveStep persists one learner step record.
func (s *Storage) SaveStep(rec *learner.StepRecord) error {
	row := domain.StepRecord{
		Bar:         rec.Bar,
		Phase:       rec.Phase.String(),
		Decay:       rec.Decay,
		NodeIndex:   rec.NodeIndex,
		Distance:    rec.Distance,
		ActionIndex: rec.ActionIndex,
		QValue:      rec.QValue,
		Reward:      rec.Reward,
	}
	return s.db.Create(&row).Error
}

// LoadSteps returns stored learner steps in bar order.
func (s *Storage) LoadSteps() ([]domain.StepRecord, error) {
	var steps []domain.StepRecord
	err := s.db.Order("bar asc").Find(&steps).Error
	return steps, err
}

// SaveFill persists an executed fill.
func (s *Storage) SaveFill(fill *domain.Fill) error {
	row := domain.FillRecord{
		OrderID: fill.OrderID,
		Symbol:  fill.Symbol,
		Side:    fill.Side,
		Price:   fill.Price.String(),
		Qty:     fill.Qty.String(),
		Fee:     fill.Fee.String(),
		Ts:      fill.Ts,
	}
	return s.db.Create(&row).Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
