package mealplans

import (
	"context"
	"sync"
	"testing"

	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/fdg312/meal-planner/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapInPlan_ConcurrentSwapsKeepTotal(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), defaultCatalogGenerator(t, 7), 10)

	for round := 0; round < 10; round++ {
		_, err := svc.Generate(ctx, profiles.Profile{
			Name:          "Alex",
			Gender:        profiles.GenderMale,
			Age:           30,
			Weight:        70,
			WeightUnit:    profiles.WeightUnitKg,
			Height:        175,
			HeightUnit:    profiles.HeightUnitCm,
			HealthGoal:    profiles.GoalLoseWeight,
			ActivityLevel: profiles.ActivityModerate,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, slot := range []string{"breakfast", "lunch", "dinner"} {
			wg.Add(1)
			go func(slot string) {
				defer wg.Done()
				_, err := svc.SwapInPlan(ctx, SwapPlanMealRequest{User: "Alex", Slot: slot})
				assert.NoError(t, err, "swap %s", slot)
			}(slot)
		}
		wg.Wait()

		got, found, err := svc.GetActive(ctx, "Alex")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, got.Plan.SumCalories(), got.Plan.TotalCalories, "round %d", round)
	}
}
