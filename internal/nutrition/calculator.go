package nutrition

import (
	"math"

	"github.com/fdg312/meal-planner/internal/profiles"
)

const (
	// MinLoseWeightKcal is the floor applied to weight-loss targets.
	MinLoseWeightKcal  = 1200
	goalAdjustmentKcal = 500

	defaultMultiplier = 1.55
)

var activityMultipliers = map[profiles.ActivityLevel]float64{
	profiles.ActivityLight:      1.375,
	profiles.ActivityModerate:   1.55,
	profiles.ActivityVeryActive: 1.725,
}

// BMR computes the basal metabolic rate with the Mifflin-St Jeor equation.
// Genders other than male use the -161 offset.
func BMR(p profiles.Profile) float64 {
	bmr := 10*p.WeightKg() + 6.25*p.HeightCm() - 5*float64(p.Age)
	if p.Gender == profiles.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// ActivityMultiplier returns the TDEE multiplier, 1.55 for unknown levels.
func ActivityMultiplier(level profiles.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return defaultMultiplier
}

// MaintenanceCalories returns round(BMR * activity multiplier).
func MaintenanceCalories(p profiles.Profile) int {
	return roundHalfUp(BMR(p) * ActivityMultiplier(p.ActivityLevel))
}

// TargetCalories adjusts maintenance calories for the health goal.
func TargetCalories(maintenance int, goal profiles.HealthGoal) int {
	switch goal {
	case profiles.GoalLoseWeight:
		return max(MinLoseWeightKcal, maintenance-goalAdjustmentKcal)
	case profiles.GoalBulk:
		return maintenance + goalAdjustmentKcal
	default:
		return maintenance
	}
}

// Calculate derives all calorie figures for an already validated profile.
func Calculate(p profiles.Profile) Targets {
	bmr := BMR(p)
	multiplier := ActivityMultiplier(p.ActivityLevel)
	maintenance := roundHalfUp(bmr * multiplier)
	return Targets{
		BMR:             bmr,
		Multiplier:      multiplier,
		MaintenanceKcal: maintenance,
		TargetKcal:      TargetCalories(maintenance, p.HealthGoal),
		HealthGoal:      p.HealthGoal,
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
