package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/domain/repository"
)

const insertChunk = 2000

// ClickHousePrices stores the processed series in a ClickHouse table.
type ClickHousePrices struct {
	db    *sql.DB
	table string
}

// NewClickHousePrices creates the ClickHouse series store over a qualified table name.
func NewClickHousePrices(db *sql.DB, table string) *ClickHousePrices {
	return &ClickHousePrices{db: db, table: table}
}

var (
	_ repository.SeriesWriter = (*ClickHousePrices)(nil)
	_ repository.SeriesReader = (*ClickHousePrices)(nil)
)

// WriteSeries inserts points in multi-row chunks.
func (s *ClickHousePrices) WriteSeries(ctx context.Context, coin string, points []models.PricePoint) error {
	for start := 0; start < len(points); start += insertChunk {
		end := start + insertChunk
		if end > len(points) {
			end = len(points)
		}
		chunk := points[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*3)
		for _, p := range chunk {
			values = append(values, "(?, ?, ?)")
			args = append(args, coin, p.Timestamp.UTC(), p.Price)
		}
		q := fmt.Sprintf("INSERT INTO %s (coin, ts, price) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert prices [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// ReadSeries returns the latest limit rows for coin in ascending time order.
// FINAL collapses rows re-inserted by repeated preprocess runs that the
// ReplacingMergeTree has not merged yet.
func (s *ClickHousePrices) ReadSeries(ctx context.Context, coin string, limit int) ([]models.PricePoint, error) {
	q := fmt.Sprintf("SELECT ts, price FROM %s FINAL WHERE coin = ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, coin, limit)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var (
			ts    time.Time
			price float64
		)
		if err := rows.Scan(&ts, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		points = append(points, models.PricePoint{Timestamp: ts.UTC(), Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
