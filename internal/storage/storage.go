package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("not found")

// Storage - корневой интерфейс хранилища (memory или Postgres)
type Storage interface {
	// Close закрывает соединение (для Postgres)
	Close() error
}

// PlansStorage - интерфейс для хранения активного плана пользователя
type PlansStorage interface {
	// GetActivePlan возвращает активный план и его позиции
	GetActivePlan(ctx context.Context, userKey string) (StoredPlan, []PlanItem, bool, error)

	// ReplaceActivePlan атомарно заменяет активный план пользователя
	ReplaceActivePlan(ctx context.Context, plan StoredPlanUpsert, items []PlanItemUpsert) (StoredPlan, []PlanItem, error)

	// ReplacePlanItem заменяет одну позицию плана (slot + position); итог калорий
	// пересчитывается по позициям в той же транзакции
	ReplacePlanItem(ctx context.Context, planID uuid.UUID, item PlanItemUpsert) (StoredPlan, []PlanItem, error)

	// DeleteActivePlan удаляет активный план (no-op, если плана нет)
	DeleteActivePlan(ctx context.Context, userKey string) error
}

// StoredPlan - сохранённый план пользователя
type StoredPlan struct {
	ID              uuid.UUID
	UserKey         string
	Profile         []byte // JSON snapshot профиля
	MaintenanceKcal int
	TargetKcal      int
	TotalCalories   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StoredPlanUpsert - входные данные для замены плана
type StoredPlanUpsert struct {
	UserKey         string
	Profile         []byte
	MaintenanceKcal int
	TargetKcal      int
	TotalCalories   int
}

// PlanItem - блюдо в слоте плана
type PlanItem struct {
	ID        uuid.UUID
	PlanID    uuid.UUID
	Slot      string // breakfast, lunch, dinner, snack
	Position  int    // 0 для основных слотов, индекс для перекусов
	MealID    uuid.UUID
	Name      string
	Calories  int
	Payload   []byte // JSON блюда из каталога
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanItemUpsert - входные данные для позиции плана
type PlanItemUpsert struct {
	Slot     string
	Position int
	MealID   uuid.UUID
	Name     string
	Calories int
	Payload  []byte
}

// ProgressStorage - интерфейс для журнала веса
type ProgressStorage interface {
	// AppendProgress добавляет запись в журнал
	AppendProgress(ctx context.Context, entry *ProgressEntry) error

	// ListProgress возвращает всю историю пользователя, старые записи первыми
	ListProgress(ctx context.Context, userKey string) ([]ProgressEntry, error)
}

// ProgressEntry - запись журнала веса
type ProgressEntry struct {
	ID        uuid.UUID
	UserKey   string
	Date      string // YYYY-MM-DD
	Weight    float64
	Unit      string // kg или lbs
	CreatedAt time.Time
}

// ExportsStorage - интерфейс для работы с экспортами плана
type ExportsStorage interface {
	// CreateExport сохраняет метаданные экспорта (байты лежат в blob store)
	CreateExport(ctx context.Context, export *ExportMeta) error

	// GetExport возвращает экспорт по ID
	GetExport(ctx context.Context, id uuid.UUID) (*ExportMeta, error)

	// ListExports возвращает экспорты пользователя с пагинацией
	ListExports(ctx context.Context, userKey string, limit, offset int) ([]ExportMeta, error)

	// DeleteExport удаляет экспорт
	DeleteExport(ctx context.Context, id uuid.UUID) error
}

// ExportMeta - метаданные экспорта
type ExportMeta struct {
	ID        uuid.UUID
	UserKey   string
	PlanID    uuid.UUID
	Format    string  // "pdf" or "csv"
	ObjectKey *string // blob object key (NULL for failed exports)
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotOrder задаёт порядок слотов при выдаче позиций плана
func SlotOrder(slot string) int {
	switch slot {
	case "breakfast":
		return 1
	case "lunch":
		return 2
	case "dinner":
		return 3
	case "snack":
		return 4
	}
	return 5
}
