package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProgressStorage - Postgres журнал веса
type PostgresProgressStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressStorage создаёт новое хранилище журнала
func NewPostgresProgressStorage(pool *pgxpool.Pool) *PostgresProgressStorage {
	return &PostgresProgressStorage{pool: pool}
}

// AppendProgress добавляет запись в журнал
func (s *PostgresProgressStorage) AppendProgress(ctx context.Context, entry *storage.ProgressEntry) error {
	query := `
		INSERT INTO progress_entries (id, user_key, entry_date, weight, unit, created_at)
		VALUES ($1, $2, $3::date, $4, $5, NOW())
		RETURNING created_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserKey,
		entry.Date,
		entry.Weight,
		entry.Unit,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append progress entry: %w", err)
	}

	return nil
}

// ListProgress возвращает историю пользователя, старые записи первыми
func (s *PostgresProgressStorage) ListProgress(ctx context.Context, userKey string) ([]storage.ProgressEntry, error) {
	query := `
		SELECT id, user_key, to_char(entry_date, 'YYYY-MM-DD'), weight, unit, created_at
		FROM progress_entries
		WHERE user_key = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	entries := []storage.ProgressEntry{}
	for rows.Next() {
		var e storage.ProgressEntry
		if err := rows.Scan(&e.ID, &e.UserKey, &e.Date, &e.Weight, &e.Unit, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
