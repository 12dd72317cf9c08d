package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

// PlansMemoryStorage - in-memory storage для активных планов
type PlansMemoryStorage struct {
	mu        sync.RWMutex
	plans     map[uuid.UUID]*storage.StoredPlan // key: plan_id
	items     map[uuid.UUID][]storage.PlanItem  // key: plan_id
	byUserKey map[string]uuid.UUID              // key: user_key -> active plan_id
	now       func() time.Time
}

// NewPlansMemoryStorage создаёт новое in-memory хранилище планов
func NewPlansMemoryStorage() *PlansMemoryStorage {
	return &PlansMemoryStorage{
		plans:     make(map[uuid.UUID]*storage.StoredPlan),
		items:     make(map[uuid.UUID][]storage.PlanItem),
		byUserKey: make(map[string]uuid.UUID),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *PlansMemoryStorage) GetActivePlan(ctx context.Context, userKey string) (storage.StoredPlan, []storage.PlanItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	planID, ok := s.byUserKey[userKey]
	if !ok {
		return storage.StoredPlan{}, nil, false, nil
	}

	plan, ok := s.plans[planID]
	if !ok {
		return storage.StoredPlan{}, nil, false, nil
	}

	return *plan, s.copyItemsLocked(planID), true, nil
}

func (s *PlansMemoryStorage) ReplaceActivePlan(ctx context.Context, upsert storage.StoredPlanUpsert, itemsUpsert []storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// Удаляем предыдущий активный план
	if existingID, ok := s.byUserKey[upsert.UserKey]; ok {
		delete(s.plans, existingID)
		delete(s.items, existingID)
	}

	plan := &storage.StoredPlan{
		ID:              uuid.New(),
		UserKey:         upsert.UserKey,
		Profile:         append([]byte(nil), upsert.Profile...),
		MaintenanceKcal: upsert.MaintenanceKcal,
		TargetKcal:      upsert.TargetKcal,
		TotalCalories:   upsert.TotalCalories,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.plans[plan.ID] = plan
	s.byUserKey[upsert.UserKey] = plan.ID

	items := make([]storage.PlanItem, 0, len(itemsUpsert))
	for _, itemReq := range itemsUpsert {
		items = append(items, storage.PlanItem{
			ID:        uuid.New(),
			PlanID:    plan.ID,
			Slot:      itemReq.Slot,
			Position:  itemReq.Position,
			MealID:    itemReq.MealID,
			Name:      itemReq.Name,
			Calories:  itemReq.Calories,
			Payload:   append([]byte(nil), itemReq.Payload...),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	sortItems(items)
	s.items[plan.ID] = items

	return *plan, s.copyItemsLocked(plan.ID), nil
}

func (s *PlansMemoryStorage) ReplacePlanItem(ctx context.Context, planID uuid.UUID, itemReq storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[planID]
	if !ok {
		return storage.StoredPlan{}, nil, fmt.Errorf("plan %s: %w", planID, storage.ErrNotFound)
	}

	items := s.items[planID]
	idx := -1
	for i, item := range items {
		if item.Slot == itemReq.Slot && item.Position == itemReq.Position {
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.StoredPlan{}, nil, fmt.Errorf("plan item %s[%d]: %w", itemReq.Slot, itemReq.Position, storage.ErrNotFound)
	}

	now := s.now()
	item := &items[idx]
	item.MealID = itemReq.MealID
	item.Name = itemReq.Name
	item.Calories = itemReq.Calories
	item.Payload = append([]byte(nil), itemReq.Payload...)
	item.UpdatedAt = now

	total := 0
	for _, it := range items {
		total += it.Calories
	}
	plan.TotalCalories = total
	plan.UpdatedAt = now

	return *plan, s.copyItemsLocked(planID), nil
}

func (s *PlansMemoryStorage) DeleteActivePlan(ctx context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	planID, ok := s.byUserKey[userKey]
	if !ok {
		return nil // nothing to delete
	}

	delete(s.plans, planID)
	delete(s.items, planID)
	delete(s.byUserKey, userKey)

	return nil
}

// copyItemsLocked must be called with lock held
func (s *PlansMemoryStorage) copyItemsLocked(planID uuid.UUID) []storage.PlanItem {
	items := s.items[planID]
	out := make([]storage.PlanItem, len(items))
	copy(out, items)
	return out
}

func sortItems(items []storage.PlanItem) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := storage.SlotOrder(items[i].Slot), storage.SlotOrder(items[j].Slot)
		if oi != oj {
			return oi < oj
		}
		return items[i].Position < items[j].Position
	})
}
