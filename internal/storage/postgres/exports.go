package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExportsStorage - Postgres storage для экспортов
type PostgresExportsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresExportsStorage создаёт новое Postgres хранилище
func NewPostgresExportsStorage(pool *pgxpool.Pool) *PostgresExportsStorage {
	return &PostgresExportsStorage{pool: pool}
}

// CreateExport создаёт новый экспорт
func (s *PostgresExportsStorage) CreateExport(ctx context.Context, export *storage.ExportMeta) error {
	query := `
		INSERT INTO exports (id, user_key, plan_id, format, object_key, size_bytes, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		export.ID,
		export.UserKey,
		export.PlanID,
		export.Format,
		export.ObjectKey,
		export.SizeBytes,
		export.Status,
		export.Error,
	).Scan(&export.CreatedAt, &export.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

// GetExport возвращает экспорт по ID
func (s *PostgresExportsStorage) GetExport(ctx context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	query := `
		SELECT id, user_key, plan_id, format, object_key, size_bytes, status, error, created_at, updated_at
		FROM exports
		WHERE id = $1
	`

	var export storage.ExportMeta
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&export.ID,
		&export.UserKey,
		&export.PlanID,
		&export.Format,
		&export.ObjectKey,
		&export.SizeBytes,
		&export.Status,
		&export.Error,
		&export.CreatedAt,
		&export.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("export %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	return &export, nil
}

// ListExports возвращает список экспортов с пагинацией
func (s *PostgresExportsStorage) ListExports(ctx context.Context, userKey string, limit, offset int) ([]storage.ExportMeta, error) {
	query := `
		SELECT id, user_key, plan_id, format, object_key, size_bytes, status, error, created_at, updated_at
		FROM exports
		WHERE user_key = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, userKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	exports := []storage.ExportMeta{}
	for rows.Next() {
		var e storage.ExportMeta
		err := rows.Scan(
			&e.ID,
			&e.UserKey,
			&e.PlanID,
			&e.Format,
			&e.ObjectKey,
			&e.SizeBytes,
			&e.Status,
			&e.Error,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, e)
	}

	return exports, rows.Err()
}

// DeleteExport удаляет экспорт
func (s *PostgresExportsStorage) DeleteExport(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM exports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("export %s: %w", id, ErrNotFound)
	}

	return nil
}
