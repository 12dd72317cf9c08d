package mealplans

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/google/uuid"
)

// snackShare is the part of the main meals' calories given to snacks.
const snackShare = 0.10

// Generator picks meals from the catalog.
type Generator struct {
	provider catalog.Provider

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from src.
func NewGenerator(provider catalog.Provider, src rand.Source) *Generator {
	return &Generator{provider: provider, rng: rand.New(src)}
}

// NewSource returns a PCG source for seed, or a time-seeded one when seed is 0.
func NewSource(seed int64) rand.Source {
	if seed == 0 {
		now := uint64(time.Now().UnixNano())
		return rand.NewPCG(now, now>>1|1)
	}
	return rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
}

// GeneratePlan selects breakfast, lunch, dinner and up to two snacks. It either
// returns a complete plan or fails with a *NoSuitableMealError.
func (g *Generator) GeneratePlan(ctx context.Context, profile profiles.Profile) (Plan, error) {
	c, err := g.provider.GetCatalog(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("get catalog: %w", err)
	}
	terms := excludedTerms(profile)

	breakfast, err := g.pick(c.Breakfast, terms, catalog.SlotBreakfast)
	if err != nil {
		return Plan{}, err
	}
	lunch, err := g.pick(c.Lunch, terms, catalog.SlotLunch)
	if err != nil {
		return Plan{}, err
	}
	dinner, err := g.pick(c.Dinner, terms, catalog.SlotDinner)
	if err != nil {
		return Plan{}, err
	}

	mainCalories := breakfast.Calories + lunch.Calories + dinner.Calories
	snacks, err := selectSnacks(c.Snacks, terms, float64(mainCalories)*snackShare, SnackCount)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
		Snacks:    snacks,
	}
	plan.TotalCalories = plan.SumCalories()
	return plan, nil
}

// SwapMeal picks a replacement for current in slot. The current meal is never
// returned; it is matched by id and by name.
func (g *Generator) SwapMeal(ctx context.Context, profile profiles.Profile, slot catalog.Slot, current catalog.MealRecord) (catalog.MealRecord, error) {
	c, err := g.provider.GetCatalog(ctx)
	if err != nil {
		return catalog.MealRecord{}, fmt.Errorf("get catalog: %w", err)
	}

	candidates := Suitable(c.Records(slot), excludedTerms(profile))
	candidates = slices.DeleteFunc(candidates, func(m catalog.MealRecord) bool {
		return (current.Name != "" && m.Name == current.Name) || (current.ID != uuid.Nil && m.ID == current.ID)
	})
	if len(candidates) == 0 {
		return catalog.MealRecord{}, &NoSuitableMealError{Slot: slot, Swap: true}
	}

	return candidates[g.intN(len(candidates))], nil
}

func (g *Generator) pick(records []catalog.MealRecord, terms []string, slot catalog.Slot) (catalog.MealRecord, error) {
	candidates := Suitable(records, terms)
	if len(candidates) == 0 {
		return catalog.MealRecord{}, &NoSuitableMealError{Slot: slot}
	}
	return candidates[g.intN(len(candidates))], nil
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// selectSnacks keeps the suitable snacks closest to targetCalories/count.
// Ties keep catalog order.
func selectSnacks(records []catalog.MealRecord, terms []string, targetCalories float64, count int) ([]catalog.MealRecord, error) {
	candidates := Suitable(records, terms)
	if len(candidates) == 0 {
		return nil, &NoSuitableMealError{Slot: catalog.SlotSnack}
	}

	perSnack := targetCalories / float64(count)
	slices.SortStableFunc(candidates, func(a, b catalog.MealRecord) int {
		da := math.Abs(float64(a.Calories) - perSnack)
		db := math.Abs(float64(b.Calories) - perSnack)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates, nil
}

// Suitable returns the records with no ingredient containing any of terms,
// compared case-insensitively. terms must already be lower-cased.
func Suitable(records []catalog.MealRecord, terms []string) []catalog.MealRecord {
	out := make([]catalog.MealRecord, 0, len(records))
	for _, rec := range records {
		if !containsAny(rec.Ingredients, terms) {
			out = append(out, rec)
		}
	}
	return out
}

func containsAny(ingredients []string, terms []string) bool {
	for _, ingredient := range ingredients {
		lower := strings.ToLower(ingredient)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

func excludedTerms(profile profiles.Profile) []string {
	raw := profile.ExcludedTerms()
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
