package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert creates the user for identity.ID or refreshes its display fields.
// The id and telegram_id of an existing row never change.
func (r *UserRepository) Upsert(ctx context.Context, identity *model.TelegramIdentity) (*model.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin user upsert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stmt := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES (@telegram_id, @username, @first_name, @last_name)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username   = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			updated_at = now()
		RETURNING id, telegram_id, username, first_name, last_name, created_at, updated_at
	`

	rows, err := tx.Query(ctx, stmt, pgx.NamedArgs{
		"telegram_id": identity.ID,
		"username":    nullable(identity.Username),
		"first_name":  nullable(identity.FirstName),
		"last_name":   nullable(identity.LastName),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user telegram_id=%d: %w", identity.ID, err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, fmt.Errorf("collect upserted user telegram_id=%d: %w", identity.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user upsert: %w", err)
	}
	return &user, nil
}

// GetIDByTelegramID reports the internal id for telegramID and whether it exists.
func (r *UserRepository) GetIDByTelegramID(ctx context.Context, telegramID int64) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE telegram_id = $1`, telegramID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("look up user telegram_id=%d: %w", telegramID, err)
	}
	return id, true, nil
}
