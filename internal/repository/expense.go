package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

const expenseColumns = `id, amount, category, description, date, created_at`

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// List returns the owner's expenses, newest date first.
func (r *ExpenseRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_uuid = $1
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses user_id=%s: %w", userID, err)
	}

	expenses, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Expense])
	if err != nil {
		return nil, fmt.Errorf("collect expenses user_id=%s: %w", userID, err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, userID uuid.UUID, e model.NewExpense) (*model.Expense, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin expense insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, `
		INSERT INTO expenses (user_uuid, amount, category, description, date)
		VALUES (@user_id, @amount, @category, @description, @date)
		RETURNING `+expenseColumns, pgx.NamedArgs{
		"user_id":     userID,
		"amount":      e.Amount,
		"category":    e.Category,
		"description": e.Description,
		"date":        e.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("insert expense user_id=%s: %w", userID, err)
	}

	expense, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Expense])
	if err != nil {
		return nil, fmt.Errorf("collect inserted expense: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit expense insert: %w", err)
	}
	return &expense, nil
}

// Delete removes the expense only when userID owns it and reports how many
// rows went away; zero is not an error.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin expense delete: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_uuid = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete expense id=%s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit expense delete: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats sums the owner's expenses per category within the optional
// inclusive date range, largest total first.
func (r *ExpenseRepository) Stats(ctx context.Context, userID uuid.UUID, from, to *model.Date) ([]model.CategoryTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, SUM(amount) AS total, COUNT(*) AS count
		FROM expenses
		WHERE user_uuid = @user_id
			AND (@from::date IS NULL OR date >= @from::date)
			AND (@to::date IS NULL OR date <= @to::date)
		GROUP BY category
		ORDER BY total DESC, category
	`, pgx.NamedArgs{
		"user_id": userID,
		"from":    from,
		"to":      to,
	})
	if err != nil {
		return nil, fmt.Errorf("expense stats user_id=%s: %w", userID, err)
	}

	totals, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.CategoryTotal])
	if err != nil {
		return nil, fmt.Errorf("collect expense stats: %w", err)
	}
	return totals, nil
}

// Categories lists the distinct categories the owner has used, most
// recently used first.
func (r *ExpenseRepository) Categories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category
		FROM expenses
		WHERE user_uuid = $1
		GROUP BY category
		ORDER BY MAX(created_at) DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories user_id=%s: %w", userID, err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	return categories, nil
}
