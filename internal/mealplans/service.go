package mealplans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/nutrition"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/fdg312/meal-planner/internal/storage"
)

// DefaultShoppingListPageSize is the number of ingredients per shopping list page.
const DefaultShoppingListPageSize = 10

// Service handles meal plans business logic.
type Service struct {
	storage   storage.PlansStorage
	generator *Generator
	pageSize  int
}

// NewService creates a new meal plans service.
func NewService(storage storage.PlansStorage, generator *Generator, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultShoppingListPageSize
	}
	return &Service{storage: storage, generator: generator, pageSize: pageSize}
}

// Generate validates the profile, builds a new plan and stores it as the active
// plan of the profile's user key.
func (s *Service) Generate(ctx context.Context, input profiles.Profile) (*StoredPlanDTO, error) {
	profile, err := profiles.Normalize(input)
	if err != nil {
		return nil, err
	}

	plan, err := s.generator.GeneratePlan(ctx, profile)
	if err != nil {
		return nil, err
	}
	targets := nutrition.Calculate(profile)

	snapshot, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	items, err := planItems(plan)
	if err != nil {
		return nil, err
	}

	stored, storedItems, err := s.storage.ReplaceActivePlan(ctx, storage.StoredPlanUpsert{
		UserKey:         profile.Key(),
		Profile:         snapshot,
		MaintenanceKcal: targets.MaintenanceKcal,
		TargetKcal:      targets.TargetKcal,
		TotalCalories:   plan.TotalCalories,
	}, items)
	if err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}

	return toDTO(stored, storedItems)
}

// GetActive returns the active plan of a user key.
func (s *Service) GetActive(ctx context.Context, userKey string) (*StoredPlanDTO, bool, error) {
	stored, items, found, err := s.storage.GetActivePlan(ctx, strings.TrimSpace(userKey))
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	dto, err := toDTO(stored, items)
	if err != nil {
		return nil, false, err
	}
	return dto, true, nil
}

// DeleteActive deletes the active plan of a user key.
func (s *Service) DeleteActive(ctx context.Context, userKey string) error {
	return s.storage.DeleteActivePlan(ctx, strings.TrimSpace(userKey))
}

// Swap replaces a single meal without touching any stored plan.
func (s *Service) Swap(ctx context.Context, req SwapMealRequest) (catalog.MealRecord, error) {
	slot, err := catalog.ParseSlot(req.Slot)
	if err != nil {
		return catalog.MealRecord{}, fmt.Errorf("%w: %v", profiles.ErrValidation, err)
	}
	return s.generator.SwapMeal(ctx, req.Profile, slot, req.Current)
}

// SwapInPlan replaces one meal of the stored plan and adjusts its total.
func (s *Service) SwapInPlan(ctx context.Context, req SwapPlanMealRequest) (*StoredPlanDTO, error) {
	slot, err := catalog.ParseSlot(req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", profiles.ErrValidation, err)
	}

	current, found, err := s.GetActive(ctx, req.User)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPlanNotFound
	}

	position := 0
	var old catalog.MealRecord
	switch slot {
	case catalog.SlotBreakfast:
		old = current.Plan.Breakfast
	case catalog.SlotLunch:
		old = current.Plan.Lunch
	case catalog.SlotDinner:
		old = current.Plan.Dinner
	case catalog.SlotSnack:
		if req.SnackIndex < 0 || req.SnackIndex >= len(current.Plan.Snacks) {
			return nil, fmt.Errorf("%w: plan has %d snacks", ErrInvalidSnackIndex, len(current.Plan.Snacks))
		}
		position = req.SnackIndex
		old = current.Plan.Snacks[position]
	}

	replacement, err := s.generator.SwapMeal(ctx, current.Profile, slot, old)
	if err != nil {
		return nil, err
	}

	item, err := planItem(slot, position, replacement)
	if err != nil {
		return nil, err
	}
	stored, items, err := s.storage.ReplacePlanItem(ctx, current.ID, item)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("store swap: %w", err)
	}

	return toDTO(stored, items)
}

// ShoppingList returns one page of the active plan's shopping list. Pages start at 1.
func (s *Service) ShoppingList(ctx context.Context, userKey string, page int) (*ShoppingListResponse, error) {
	current, found, err := s.GetActive(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPlanNotFound
	}

	all := BuildShoppingList(current.Plan)
	items, page, totalPages := Paginate(all, page, s.pageSize)

	return &ShoppingListResponse{
		User:       current.User,
		Page:       page,
		PageSize:   s.pageSize,
		TotalItems: len(all),
		TotalPages: totalPages,
		Items:      items,
	}, nil
}

func planItems(plan Plan) ([]storage.PlanItemUpsert, error) {
	items := make([]storage.PlanItemUpsert, 0, 3+len(plan.Snacks))
	mains := []struct {
		slot catalog.Slot
		meal catalog.MealRecord
	}{
		{catalog.SlotBreakfast, plan.Breakfast},
		{catalog.SlotLunch, plan.Lunch},
		{catalog.SlotDinner, plan.Dinner},
	}
	for _, m := range mains {
		item, err := planItem(m.slot, 0, m.meal)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	for i, snack := range plan.Snacks {
		item, err := planItem(catalog.SlotSnack, i, snack)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func planItem(slot catalog.Slot, position int, meal catalog.MealRecord) (storage.PlanItemUpsert, error) {
	payload, err := json.Marshal(meal)
	if err != nil {
		return storage.PlanItemUpsert{}, fmt.Errorf("encode meal %q: %w", meal.Name, err)
	}
	return storage.PlanItemUpsert{
		Slot:     string(slot),
		Position: position,
		MealID:   meal.ID,
		Name:     meal.Name,
		Calories: meal.Calories,
		Payload:  payload,
	}, nil
}

func toDTO(stored storage.StoredPlan, items []storage.PlanItem) (*StoredPlanDTO, error) {
	var profile profiles.Profile
	if err := json.Unmarshal(stored.Profile, &profile); err != nil {
		return nil, fmt.Errorf("decode profile of plan %s: %w", stored.ID, err)
	}

	plan := Plan{Snacks: []catalog.MealRecord{}, TotalCalories: stored.TotalCalories}
	for _, item := range items {
		var meal catalog.MealRecord
		if err := json.Unmarshal(item.Payload, &meal); err != nil {
			return nil, fmt.Errorf("decode %s item of plan %s: %w", item.Slot, stored.ID, err)
		}
		switch catalog.Slot(item.Slot) {
		case catalog.SlotBreakfast:
			plan.Breakfast = meal
		case catalog.SlotLunch:
			plan.Lunch = meal
		case catalog.SlotDinner:
			plan.Dinner = meal
		case catalog.SlotSnack:
			plan.Snacks = append(plan.Snacks, meal)
		}
	}

	targets := nutrition.Calculate(profile)
	targets.MaintenanceKcal = stored.MaintenanceKcal
	targets.TargetKcal = stored.TargetKcal

	return &StoredPlanDTO{
		ID:        stored.ID,
		User:      stored.UserKey,
		Profile:   profile,
		Targets:   targets,
		Plan:      plan,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}
