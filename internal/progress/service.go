package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/fdg312/meal-planner/internal/storage"
)

var ErrValidation = errors.New("validation failed")

// PlanLookup finds the stored plan whose profile supplies the default unit.
type PlanLookup interface {
	GetActive(ctx context.Context, userKey string) (*mealplans.StoredPlanDTO, bool, error)
}

// Service handles the weight log.
type Service struct {
	storage storage.ProgressStorage
	plans   PlanLookup
	now     func() time.Time
}

// NewService creates a new progress service. plans may be nil.
func NewService(storage storage.ProgressStorage, plans PlanLookup) *Service {
	return &Service{storage: storage, plans: plans, now: time.Now}
}

// SaveProgress appends a measurement stamped with today's date. An empty unit
// falls back to the unit of the user's stored profile, then to kg.
func (s *Service) SaveProgress(ctx context.Context, userKey string, weight float64, unit string) (*EntryDTO, error) {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 1 || weight > 500 {
		return nil, fmt.Errorf("%w: weight must be between 1 and 500", ErrValidation)
	}

	resolved, err := s.resolveUnit(ctx, userKey, unit)
	if err != nil {
		return nil, err
	}

	entry := &storage.ProgressEntry{
		UserKey: userKey,
		Date:    s.now().UTC().Format("2006-01-02"),
		Weight:  weight,
		Unit:    string(resolved),
	}
	if err := s.storage.AppendProgress(ctx, entry); err != nil {
		return nil, fmt.Errorf("append progress: %w", err)
	}

	dto := toDTO(*entry)
	return &dto, nil
}

// GetProgress returns the full history of a user, oldest first.
func (s *Service) GetProgress(ctx context.Context, userKey string) ([]EntryDTO, error) {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}

	entries, err := s.storage.ListProgress(ctx, userKey)
	if err != nil {
		return nil, err
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toDTO(e)
	}
	return dtos, nil
}

func (s *Service) resolveUnit(ctx context.Context, userKey, unit string) (profiles.WeightUnit, error) {
	switch u := profiles.WeightUnit(strings.ToLower(strings.TrimSpace(unit))); u {
	case profiles.WeightUnitKg, profiles.WeightUnitLbs:
		return u, nil
	case "":
	default:
		return "", fmt.Errorf("%w: unit must be kg or lbs", ErrValidation)
	}

	if s.plans != nil {
		plan, found, err := s.plans.GetActive(ctx, userKey)
		if err != nil {
			return "", fmt.Errorf("lookup profile: %w", err)
		}
		if found && plan.Profile.WeightUnit != "" {
			return plan.Profile.WeightUnit, nil
		}
	}
	return profiles.WeightUnitKg, nil
}

func toDTO(e storage.ProgressEntry) EntryDTO {
	return EntryDTO{
		ID:        e.ID,
		Date:      e.Date,
		Weight:    e.Weight,
		Unit:      e.Unit,
		CreatedAt: e.CreatedAt,
	}
}
