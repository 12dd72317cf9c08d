package memory

import (
	"context"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound = storage.ErrNotFound
)

// MemoryStorage - in-memory реализация всех хранилищ
type MemoryStorage struct {
	plans    *PlansMemoryStorage
	progress *ProgressMemoryStorage
	exports  *ExportsMemoryStorage
}

// New создаёт новый MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		plans:    NewPlansMemoryStorage(),
		progress: NewProgressMemoryStorage(),
		exports:  NewExportsMemoryStorage(),
	}
}

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

// GetPlansStorage returns the plans storage
func (m *MemoryStorage) GetPlansStorage() storage.PlansStorage {
	return m.plans
}

// GetProgressStorage returns the progress storage
func (m *MemoryStorage) GetProgressStorage() storage.ProgressStorage {
	return m.progress
}

// GetExportsStorage returns the exports storage
func (m *MemoryStorage) GetExportsStorage() storage.ExportsStorage {
	return m.exports
}

// PlansStorage methods - делегируем к встроенному plans storage

func (m *MemoryStorage) GetActivePlan(ctx context.Context, userKey string) (storage.StoredPlan, []storage.PlanItem, bool, error) {
	return m.plans.GetActivePlan(ctx, userKey)
}

func (m *MemoryStorage) ReplaceActivePlan(ctx context.Context, plan storage.StoredPlanUpsert, items []storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	return m.plans.ReplaceActivePlan(ctx, plan, items)
}

func (m *MemoryStorage) ReplacePlanItem(ctx context.Context, planID uuid.UUID, item storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	return m.plans.ReplacePlanItem(ctx, planID, item)
}

func (m *MemoryStorage) DeleteActivePlan(ctx context.Context, userKey string) error {
	return m.plans.DeleteActivePlan(ctx, userKey)
}

// ProgressStorage methods - делегируем к встроенному progress storage

func (m *MemoryStorage) AppendProgress(ctx context.Context, entry *storage.ProgressEntry) error {
	return m.progress.AppendProgress(ctx, entry)
}

func (m *MemoryStorage) ListProgress(ctx context.Context, userKey string) ([]storage.ProgressEntry, error) {
	return m.progress.ListProgress(ctx, userKey)
}
