package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

const comparisonColumns = `id, name_x, price_x, weight_x, name_y, price_y, weight_y,
	price_per_gram_x, price_per_gram_y, better_option, savings_percent, date, created_at`

type ComparisonRepository struct {
	pool *pgxpool.Pool
}

func NewComparisonRepository(pool *pgxpool.Pool) *ComparisonRepository {
	return &ComparisonRepository{pool: pool}
}

func (r *ComparisonRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Comparison, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+comparisonColumns+`
		FROM comparisons
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons user_id=%s: %w", userID, err)
	}

	comparisons, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Comparison])
	if err != nil {
		return nil, fmt.Errorf("collect comparisons user_id=%s: %w", userID, err)
	}
	return comparisons, nil
}

func (r *ComparisonRepository) Create(ctx context.Context, userID uuid.UUID, c model.NewComparison) (*model.Comparison, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin comparison insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, `
		INSERT INTO comparisons (
			user_id, name_x, price_x, weight_x, name_y, price_y, weight_y,
			price_per_gram_x, price_per_gram_y, better_option, savings_percent, date
		)
		VALUES (
			@user_id, @name_x, @price_x, @weight_x, @name_y, @price_y, @weight_y,
			@price_per_gram_x, @price_per_gram_y, @better_option, @savings_percent, @date
		)
		RETURNING `+comparisonColumns, pgx.NamedArgs{
		"user_id":          userID,
		"name_x":           c.NameX,
		"price_x":          c.PriceX,
		"weight_x":         c.WeightX,
		"name_y":           c.NameY,
		"price_y":          c.PriceY,
		"weight_y":         c.WeightY,
		"price_per_gram_x": c.PricePerGramX,
		"price_per_gram_y": c.PricePerGramY,
		"better_option":    string(c.BetterOption),
		"savings_percent":  c.SavingsPercent,
		"date":             c.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("insert comparison user_id=%s: %w", userID, err)
	}

	comparison, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Comparison])
	if err != nil {
		return nil, fmt.Errorf("collect inserted comparison: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit comparison insert: %w", err)
	}
	return &comparison, nil
}

func (r *ComparisonRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin comparison delete: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM comparisons WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete comparison id=%s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit comparison delete: %w", err)
	}
	return tag.RowsAffected(), nil
}
