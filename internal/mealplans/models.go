package mealplans

import (
	"time"

	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/nutrition"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/google/uuid"
)

// SnackCount is the number of snacks a plan aims for.
const SnackCount = 2

// Plan is one day of meals.
type Plan struct {
	Breakfast     catalog.MealRecord   `json:"breakfast"`
	Lunch         catalog.MealRecord   `json:"lunch"`
	Dinner        catalog.MealRecord   `json:"dinner"`
	Snacks        []catalog.MealRecord `json:"snacks"`
	TotalCalories int                  `json:"total_calories"`
}

// SumCalories adds up the calories of every selected meal.
func (p Plan) SumCalories() int {
	total := p.Breakfast.Calories + p.Lunch.Calories + p.Dinner.Calories
	for _, s := range p.Snacks {
		total += s.Calories
	}
	return total
}

type StoredPlanDTO struct {
	ID        uuid.UUID         `json:"id"`
	User      string            `json:"user"`
	Profile   profiles.Profile  `json:"profile"`
	Targets   nutrition.Targets `json:"targets"`
	Plan      Plan              `json:"plan"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type SwapMealRequest struct {
	Profile profiles.Profile   `json:"profile"`
	Slot    string             `json:"slot"`
	Current catalog.MealRecord `json:"current"`
}

type SwapMealResponse struct {
	Meal catalog.MealRecord `json:"meal"`
}

type SwapPlanMealRequest struct {
	User       string `json:"user"`
	Slot       string `json:"slot"`
	SnackIndex int    `json:"snack_index"`
}

type ShoppingListResponse struct {
	User       string   `json:"user"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalItems int      `json:"total_items"`
	TotalPages int      `json:"total_pages"`
	Items      []string `json:"items"`
}
