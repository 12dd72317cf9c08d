package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrValidation = errors.New("validation failed")

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type WeightUnit string

const (
	WeightUnitKg  WeightUnit = "kg"
	WeightUnitLbs WeightUnit = "lbs"
)

type HeightUnit string

const (
	HeightUnitCm HeightUnit = "cm"
	HeightUnitFt HeightUnit = "ft"
)

type DietaryPreference string

const (
	DietNone        DietaryPreference = "none"
	DietVegetarian  DietaryPreference = "vegetarian"
	DietVegan       DietaryPreference = "vegan"
	DietPescatarian DietaryPreference = "pescatarian"
	DietKeto        DietaryPreference = "keto"
	DietPaleo       DietaryPreference = "paleo"
	DietGlutenFree  DietaryPreference = "gluten_free"
	DietDairyFree   DietaryPreference = "dairy_free"
	DietLowCarb     DietaryPreference = "low_carb"
)

var validDiets = map[DietaryPreference]bool{
	DietNone: true, DietVegetarian: true, DietVegan: true, DietPescatarian: true, DietKeto: true,
	DietPaleo: true, DietGlutenFree: true, DietDairyFree: true, DietLowCarb: true,
}

type HealthGoal string

const (
	GoalLoseWeight  HealthGoal = "lose_weight"
	GoalBulk        HealthGoal = "bulk"
	GoalBeHealthier HealthGoal = "be_healthier"
)

type ActivityLevel string

const (
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityVeryActive ActivityLevel = "very_active"
)

const (
	cmPerFoot = 30.48
	cmPerInch = 2.54
	kgPerLb   = 0.45359237
)

// Terms is a list of free-text allergy or dislike terms. In JSON it is accepted
// either as an array or as a single comma-separated string.
type Terms []string

func (t *Terms) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTerms(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("terms must be a string or an array of strings")
	}
	*t = ParseTerms(raw)
	return nil
}

// ParseTerms splits a comma-separated list, trimming entries and dropping empty ones.
func ParseTerms(s string) Terms {
	return cleanTerms(strings.Split(s, ","))
}

func cleanTerms(in []string) Terms {
	out := make(Terms, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Profile holds the biometric and dietary data of a user.
type Profile struct {
	Name              string            `json:"name"`
	Gender            Gender            `json:"gender"`
	Age               int               `json:"age"`
	Weight            float64           `json:"weight"`
	WeightUnit        WeightUnit        `json:"weight_unit"`
	Height            float64           `json:"height,omitempty"`
	HeightUnit        HeightUnit        `json:"height_unit"`
	HeightFeet        *float64          `json:"height_feet,omitempty"`
	HeightInches      *float64          `json:"height_inches,omitempty"`
	DietaryPreference DietaryPreference `json:"dietary_preference"`
	HealthGoal        HealthGoal        `json:"health_goal"`
	Allergies         Terms             `json:"allergies"`
	Dislikes          Terms             `json:"dislikes"`
	ActivityLevel     ActivityLevel     `json:"activity_level"`
}

// Key identifies the user the profile belongs to.
func (p Profile) Key() string {
	return strings.TrimSpace(p.Name)
}

// HeightCm returns the height in centimeters regardless of the input unit.
func (p Profile) HeightCm() float64 {
	if p.HeightUnit == HeightUnitFt {
		return deref(p.HeightFeet)*cmPerFoot + deref(p.HeightInches)*cmPerInch
	}
	return p.Height
}

// WeightKg returns the weight in kilograms regardless of the input unit.
func (p Profile) WeightKg() float64 {
	if p.WeightUnit == WeightUnitLbs {
		return p.Weight * kgPerLb
	}
	return p.Weight
}

// ExcludedTerms returns allergies followed by dislikes.
func (p Profile) ExcludedTerms() []string {
	terms := make([]string, 0, len(p.Allergies)+len(p.Dislikes))
	terms = append(terms, p.Allergies...)
	return append(terms, p.Dislikes...)
}

// Validate checks the ranges enforced by the intake form.
func (p Profile) Validate() error {
	if len([]rune(strings.TrimSpace(p.Name))) < 2 {
		return invalid("name must be at least 2 characters")
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return invalid("gender must be one of male, female, other")
	}
	if p.Age < 1 || p.Age > 120 {
		return invalid("age must be between 1 and 120")
	}
	if isBad(p.Weight) || p.Weight < 1 || p.Weight > 500 {
		return invalid("weight must be between 1 and 500")
	}
	switch p.WeightUnit {
	case WeightUnitKg, WeightUnitLbs:
	default:
		return invalid("weight_unit must be kg or lbs")
	}
	switch p.HeightUnit {
	case HeightUnitCm:
		if isBad(p.Height) || p.Height < 1 || p.Height > 300 {
			return invalid("height must be between 1 and 300 cm")
		}
	case HeightUnitFt:
		feet, inches := deref(p.HeightFeet), deref(p.HeightInches)
		if isBad(feet) || feet < 0 || feet > 9 {
			return invalid("height_feet must be between 0 and 9")
		}
		if isBad(inches) || inches < 0 || inches > 11 {
			return invalid("height_inches must be between 0 and 11")
		}
		if p.HeightCm() <= 0 {
			return invalid("height must be greater than 0")
		}
	default:
		return invalid("height_unit must be cm or ft")
	}
	if !validDiets[p.DietaryPreference] {
		return invalid("invalid dietary_preference")
	}
	switch p.HealthGoal {
	case GoalLoseWeight, GoalBulk, GoalBeHealthier:
	default:
		return invalid("health_goal must be one of lose_weight, bulk, be_healthier")
	}
	switch p.ActivityLevel {
	case ActivityLight, ActivityModerate, ActivityVeryActive:
	default:
		return invalid("activity_level must be one of light, moderate, very_active")
	}
	return nil
}

// Normalize fills form defaults, validates the profile and converts height to centimeters.
func Normalize(p Profile) (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Gender == "" {
		p.Gender = GenderMale
	}
	if p.WeightUnit == "" {
		p.WeightUnit = WeightUnitKg
	}
	if p.HeightUnit == "" {
		p.HeightUnit = HeightUnitCm
	}
	if p.DietaryPreference == "" {
		p.DietaryPreference = DietNone
	}
	if p.HealthGoal == "" {
		p.HealthGoal = GoalBeHealthier
	}
	if p.ActivityLevel == "" {
		p.ActivityLevel = ActivityModerate
	}
	p.Allergies = cleanTerms(p.Allergies)
	p.Dislikes = cleanTerms(p.Dislikes)

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	if p.HeightUnit == HeightUnitFt {
		p.Height = p.HeightCm()
		p.HeightUnit = HeightUnitCm
		p.HeightFeet = nil
		p.HeightInches = nil
	}
	return p, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
