package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// TargetRepository implements portfolio.TargetRepository
type TargetRepository struct {
	pool *pgxpool.Pool
}

// NewTargetRepository creates a new TargetRepository
func NewTargetRepository(pool *pgxpool.Pool) *TargetRepository {
	return &TargetRepository{pool: pool}
}

// GetTargets retrieves the user's target weights ordered by code
func (r *TargetRepository) GetTargets(ctx context.Context, userID string) ([]portfolio.TargetWeight, error) {
	query := `
		SELECT stock_code, target_weight::float8 AS target_weight
		FROM rebalance_targets
		WHERE user_id = $1
		ORDER BY stock_code ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}

	targets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (portfolio.TargetWeight, error) {
		var t portfolio.TargetWeight
		err := row.Scan(&t.StockCode, &t.TargetWeight)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan targets: %w", err)
	}

	return targets, nil
}

// SaveTargets replaces the user's target weights in one transaction
func (r *TargetRepository) SaveTargets(ctx context.Context, userID string, targets []portfolio.TargetWeight) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	codes := make([]string, len(targets))
	for i, t := range targets {
		codes[i] = t.StockCode
	}

	// 목록에서 빠진 종목 삭제
	if _, err := tx.Exec(ctx, `
		DELETE FROM rebalance_targets
		WHERE user_id = $1 AND NOT (stock_code = ANY($2))
	`, userID, codes); err != nil {
		return fmt.Errorf("delete stale targets: %w", err)
	}

	batch := &pgx.Batch{}
	for _, t := range targets {
		batch.Queue(`
			INSERT INTO rebalance_targets (user_id, stock_code, target_weight, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (user_id, stock_code) DO UPDATE SET
				target_weight = EXCLUDED.target_weight,
				updated_at = now()
		`, userID, t.StockCode, t.TargetWeight)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert targets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
