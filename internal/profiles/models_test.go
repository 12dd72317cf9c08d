package profiles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func validProfile() Profile {
	return Profile{
		Name:              "Alex",
		Gender:            GenderMale,
		Age:               30,
		Weight:            70,
		WeightUnit:        WeightUnitKg,
		Height:            175,
		HeightUnit:        HeightUnitCm,
		DietaryPreference: DietNone,
		HealthGoal:        GoalLoseWeight,
		ActivityLevel:     ActivityModerate,
	}
}

func TestHeightCm_FeetAndInches(t *testing.T) {
	p := validProfile()
	p.Height = 0
	p.HeightUnit = HeightUnitFt
	p.HeightFeet = ptr(5)
	p.HeightInches = ptr(9)

	assert.InDelta(t, 175.26, p.HeightCm(), 1e-9)

	n, err := Normalize(p)
	require.NoError(t, err)
	assert.Equal(t, HeightUnitCm, n.HeightUnit)
	assert.InDelta(t, 175.26, n.Height, 1e-9)
	assert.Nil(t, n.HeightFeet)
	assert.Nil(t, n.HeightInches)
}

func TestWeightKg_Pounds(t *testing.T) {
	p := validProfile()
	p.Weight = 150
	p.WeightUnit = WeightUnitLbs
	assert.InDelta(t, 68.0388555, p.WeightKg(), 1e-6)

	p.WeightUnit = WeightUnitKg
	assert.Equal(t, 150.0, p.WeightKg())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		ok     bool
	}{
		{"valid", func(p *Profile) {}, true},
		{"short name", func(p *Profile) { p.Name = " A " }, false},
		{"bad gender", func(p *Profile) { p.Gender = "robot" }, false},
		{"other gender", func(p *Profile) { p.Gender = GenderOther }, true},
		{"age zero", func(p *Profile) { p.Age = 0 }, false},
		{"age 121", func(p *Profile) { p.Age = 121 }, false},
		{"weight 501", func(p *Profile) { p.Weight = 501 }, false},
		{"weight unit", func(p *Profile) { p.WeightUnit = "st" }, false},
		{"height 301cm", func(p *Profile) { p.Height = 301 }, false},
		{"feet 10", func(p *Profile) {
			p.HeightUnit = HeightUnitFt
			p.HeightFeet = ptr(10)
		}, false},
		{"inches 12", func(p *Profile) {
			p.HeightUnit = HeightUnitFt
			p.HeightFeet = ptr(5)
			p.HeightInches = ptr(12)
		}, false},
		{"zero feet and inches", func(p *Profile) {
			p.HeightUnit = HeightUnitFt
		}, false},
		{"diet", func(p *Profile) { p.DietaryPreference = "carnivore" }, false},
		{"goal", func(p *Profile) { p.HealthGoal = "cut" }, false},
		{"activity", func(p *Profile) { p.ActivityLevel = "sedentary" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	n, err := Normalize(Profile{Name: "  Sam  ", Age: 40, Weight: 80, Height: 180})
	require.NoError(t, err)

	assert.Equal(t, "Sam", n.Name)
	assert.Equal(t, "Sam", n.Key())
	assert.Equal(t, GenderMale, n.Gender)
	assert.Equal(t, WeightUnitKg, n.WeightUnit)
	assert.Equal(t, HeightUnitCm, n.HeightUnit)
	assert.Equal(t, DietNone, n.DietaryPreference)
	assert.Equal(t, GoalBeHealthier, n.HealthGoal)
	assert.Equal(t, ActivityModerate, n.ActivityLevel)
}

func TestParseTerms(t *testing.T) {
	assert.Equal(t, Terms{"peanut", "shellfish"}, ParseTerms(" peanut, ,shellfish ,"))
	assert.Empty(t, ParseTerms(""))
}

func TestTerms_UnmarshalJSON(t *testing.T) {
	var p Profile
	body := `{"allergies": "nuts, eggs", "dislikes": ["tofu", " "]}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, Terms{"nuts", "eggs"}, p.Allergies)
	assert.Equal(t, Terms{"tofu"}, p.Dislikes)

	var q Profile
	require.NoError(t, json.Unmarshal([]byte(`{"allergies": null}`), &q))
	assert.Nil(t, q.Allergies)

	assert.Error(t, json.Unmarshal([]byte(`{"allergies": 5}`), &q))
}

func TestExcludedTerms(t *testing.T) {
	p := validProfile()
	p.Allergies = Terms{"egg"}
	p.Dislikes = Terms{"tofu", "olive"}
	assert.Equal(t, []string{"egg", "tofu", "olive"}, p.ExcludedTerms())
}
