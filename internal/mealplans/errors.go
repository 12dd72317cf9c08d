package mealplans

import (
	"errors"
	"fmt"

	"github.com/fdg312/meal-planner/internal/catalog"
)

var (
	ErrNoSuitableMeal    = errors.New("no suitable meal")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrInvalidSnackIndex = errors.New("invalid snack index")
)

// NoSuitableMealError reports a slot that has no candidate left after filtering.
type NoSuitableMealError struct {
	Slot catalog.Slot
	Swap bool
}

func (e *NoSuitableMealError) Error() string {
	if e.Swap {
		return fmt.Sprintf("no suitable alternative %s found for the user's preferences and restrictions", e.Slot)
	}
	return fmt.Sprintf("no suitable %s found for the user's preferences and restrictions", e.Slot)
}

func (e *NoSuitableMealError) Is(target error) bool {
	return target == ErrNoSuitableMeal
}
