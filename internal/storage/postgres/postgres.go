package postgres

import (
	"context"
	"errors"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = storage.ErrNotFound
)

// PostgresStorage - Postgres реализация всех хранилищ
type PostgresStorage struct {
	pool     *pgxpool.Pool
	plans    *PostgresPlansStorage
	progress *PostgresProgressStorage
	exports  *PostgresExportsStorage
}

// New создаёт PostgresStorage и проверяет соединение
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:     pool,
		plans:    NewPostgresPlansStorage(pool),
		progress: NewPostgresProgressStorage(pool),
		exports:  NewPostgresExportsStorage(pool),
	}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// GetPlansStorage returns the plans storage
func (p *PostgresStorage) GetPlansStorage() storage.PlansStorage {
	return p.plans
}

// GetProgressStorage returns the progress storage
func (p *PostgresStorage) GetProgressStorage() storage.ProgressStorage {
	return p.progress
}

// GetExportsStorage returns the exports storage
func (p *PostgresStorage) GetExportsStorage() storage.ExportsStorage {
	return p.exports
}

// PlansStorage methods - делегируем к встроенному plans storage

func (p *PostgresStorage) GetActivePlan(ctx context.Context, userKey string) (storage.StoredPlan, []storage.PlanItem, bool, error) {
	return p.plans.GetActivePlan(ctx, userKey)
}

func (p *PostgresStorage) ReplaceActivePlan(ctx context.Context, plan storage.StoredPlanUpsert, items []storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	return p.plans.ReplaceActivePlan(ctx, plan, items)
}

func (p *PostgresStorage) ReplacePlanItem(ctx context.Context, planID uuid.UUID, item storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	return p.plans.ReplacePlanItem(ctx, planID, item)
}

func (p *PostgresStorage) DeleteActivePlan(ctx context.Context, userKey string) error {
	return p.plans.DeleteActivePlan(ctx, userKey)
}

// ProgressStorage methods - делегируем к встроенному progress storage

func (p *PostgresStorage) AppendProgress(ctx context.Context, entry *storage.ProgressEntry) error {
	return p.progress.AppendProgress(ctx, entry)
}

func (p *PostgresStorage) ListProgress(ctx context.Context, userKey string) ([]storage.ProgressEntry, error) {
	return p.progress.ListProgress(ctx, userKey)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
