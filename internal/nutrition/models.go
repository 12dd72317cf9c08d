package nutrition

import "github.com/fdg312/meal-planner/internal/profiles"

// Targets is the result of the calorie calculation for a profile.
type Targets struct {
	BMR             float64             `json:"bmr"`
	Multiplier      float64             `json:"activity_multiplier"`
	MaintenanceKcal int                 `json:"maintenance_kcal"`
	TargetKcal      int                 `json:"target_kcal"`
	HealthGoal      profiles.HealthGoal `json:"health_goal"`
}

// CaloriesResponse is the body of POST /v1/calories.
type CaloriesResponse struct {
	Profile profiles.Profile `json:"profile"`
	Targets Targets          `json:"targets"`
}
