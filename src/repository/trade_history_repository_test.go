package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scalpwatch/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func tradeRows(records ...model.TradeRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "trade_id", "ticker", "quantity", "entry_price", "exit_price",
		"profit", "profit_percent", "entry_rsi", "entry_volume_ratio",
		"exit_reason", "closed_at", "created_at",
	})
	for _, r := range records {
		rows.AddRow(
			r.ID, r.TradeID, r.Ticker, r.Quantity, r.EntryPrice, r.ExitPrice,
			r.Profit, r.ProfitPercent, r.EntryRSI, r.EntryVolumeRatio,
			r.ExitReason, r.ClosedAt, r.CreatedAt,
		)
	}
	return rows
}

func TestTradeHistoryRepositoryListLosing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTradeHistoryRepository(db)

	closedAt := time.Date(2026, 2, 10, 10, 30, 0, 0, time.UTC)
	losers := []model.TradeRecord{
		{ID: 1, Ticker: "RELIANCE.NS", Profit: -42.5, EntryRSI: 78, ClosedAt: closedAt},
		{ID: 2, Ticker: "TCS.NS", Profit: -12.0, EntryRSI: 81, ClosedAt: closedAt.Add(time.Hour)},
	}

	mock.ExpectQuery(`SELECT \* FROM "trade_records" WHERE profit < \$1 ORDER BY closed_at ASC, id ASC`).
		WithArgs(0.0).
		WillReturnRows(tradeRows(losers...))

	records, err := repo.ListLosing(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "RELIANCE.NS", records[0].Ticker)
	require.True(t, records[0].Losing())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeHistoryRepositoryListAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTradeHistoryRepository(db)

	closedAt := time.Date(2026, 2, 10, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "trade_records" ORDER BY closed_at ASC, id ASC`).
		WillReturnRows(tradeRows(
			model.TradeRecord{ID: 1, Ticker: "RELIANCE.NS", Profit: -42.5, ClosedAt: closedAt},
			model.TradeRecord{ID: 2, Ticker: "INFY.NS", Profit: 18.0, ClosedAt: closedAt.Add(time.Hour)},
		))

	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.False(t, records[1].Losing())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeHistoryRepositoryCountLosing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTradeHistoryRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "trade_records" WHERE profit < \$1`).
		WithArgs(0.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountLosing(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeHistoryRepositoryListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTradeHistoryRepository(db)

	closedAt := time.Date(2026, 2, 11, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "trade_records" ORDER BY closed_at DESC, id DESC`).
		WillReturnRows(tradeRows(model.TradeRecord{ID: 9, Ticker: "INFY.NS", Profit: 18.0, ClosedAt: closedAt}))

	records, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "INFY.NS", records[0].Ticker)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeHistoryRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTradeHistoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "trade_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	record := &model.TradeRecord{
		TradeID:    "f6e2c1aa",
		Ticker:     "SBIN.NS",
		Quantity:   4,
		EntryPrice: 500,
		ExitPrice:  504.10,
		Profit:     16.4,
		ClosedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.EqualValues(t, 1, record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
