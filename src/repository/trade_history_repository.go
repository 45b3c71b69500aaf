package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scalpwatch/src/model"
)

// TradeHistoryRepository persists closed round-trips. The table is the
// append-only learning corpus consumed by the rule store.
type TradeHistoryRepository struct {
	db *gorm.DB
}

// NewTradeHistoryRepository creates a repository over an injected handle.
func NewTradeHistoryRepository(db *gorm.DB) *TradeHistoryRepository {
	return &TradeHistoryRepository{db: db}
}

// Create inserts a trade record. The record is updated with the generated
// ID and timestamps.
func (r *TradeHistoryRepository) Create(ctx context.Context, record *model.TradeRecord) error {
	logger.WithFields(logger.Fields{
		"repo":   "TradeHistoryRepository",
		"op":     "Create",
		"ticker": record.Ticker,
		"reason": record.ExitReason,
		"profit": record.Profit,
	}).Debug("Recording closed trade")

	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeHistoryRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record closed trade")
		return err
	}

	return nil
}

// ListLosing returns every losing round-trip, oldest first.
func (r *TradeHistoryRepository) ListLosing(ctx context.Context) ([]model.TradeRecord, error) {
	var records []model.TradeRecord

	err := r.db.WithContext(ctx).
		Where("profit < ?", 0.0).
		Order("closed_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeHistoryRepository",
			"op":   "ListLosing",
		}).WithError(err).Error("Failed to list losing trades")
		return nil, err
	}

	return records, nil
}

// ListAll returns the full corpus, oldest first.
func (r *TradeHistoryRepository) ListAll(ctx context.Context) ([]model.TradeRecord, error) {
	var records []model.TradeRecord

	err := r.db.WithContext(ctx).
		Order("closed_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeHistoryRepository",
			"op":   "ListAll",
		}).WithError(err).Error("Failed to list trades")
		return nil, err
	}

	return records, nil
}

// CountLosing returns the number of losing round-trips recorded.
func (r *TradeHistoryRepository) CountLosing(ctx context.Context) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.TradeRecord{}).
		Where("profit < ?", 0.0).
		Count(&count).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeHistoryRepository",
			"op":   "CountLosing",
		}).WithError(err).Error("Failed to count losing trades")
		return 0, err
	}

	return count, nil
}

// ListRecent returns the most recent round-trips, newest first.
func (r *TradeHistoryRepository) ListRecent(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []model.TradeRecord

	err := r.db.WithContext(ctx).
		Order("closed_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeHistoryRepository",
			"op":   "ListRecent",
		}).WithError(err).Error("Failed to list recent trades")
		return nil, err
	}

	return records, nil
}
