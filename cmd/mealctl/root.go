package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/nutrition"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "mealctl",
		Short:        "Inspect the meal catalog and generate daily plans offline",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "catalog YAML file (empty: embedded catalog) [env: CATALOG_PATH]")

	cmd.AddCommand(
		newCatalogCmd(opts),
		newCaloriesCmd(),
		newGenerateCmd(opts),
	)
	return cmd
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog [slot]",
		Short: "List catalog records, optionally for one slot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(opts.catalogPath)
			if err != nil {
				return err
			}

			slots := catalog.Slots
			if len(args) == 1 {
				slot, err := catalog.ParseSlot(args[0])
				if err != nil {
					return err
				}
				slots = []catalog.Slot{slot}
			}

			if asJSON {
				out := make(map[catalog.Slot][]catalog.MealRecord, len(slots))
				for _, slot := range slots {
					out[slot] = c.Records(slot)
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLOT\tNAME\tCALORIES\tPREP TIME")
			for _, slot := range slots {
				for _, rec := range c.Records(slot) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", slot, rec.Name, rec.Calories, rec.PrepTime)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func newCaloriesCmd() *cobra.Command {
	var pf profileFlags

	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Calculate maintenance and target calories for a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := pf.profile()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), nutrition.CaloriesResponse{
				Profile: profile,
				Targets: nutrition.Calculate(profile),
			})
		},
	}
	pf.register(cmd)
	return cmd
}

type generateOutput struct {
	Targets      nutrition.Targets `json:"targets"`
	Plan         mealplans.Plan    `json:"plan"`
	ShoppingList []string          `json:"shopping_list,omitempty"`
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		pf       profileFlags
		seed     int64
		shopping bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a daily meal plan for a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := pf.profile()
			if err != nil {
				return err
			}
			c, err := catalog.Load(opts.catalogPath)
			if err != nil {
				return err
			}

			generator := mealplans.NewGenerator(catalog.NewStaticProvider(c), mealplans.NewSource(seed))
			plan, err := generator.GeneratePlan(cmd.Context(), profile)
			if err != nil {
				return err
			}

			out := generateOutput{
				Targets: nutrition.Calculate(profile),
				Plan:    plan,
			}
			if shopping {
				out.ShoppingList = mealplans.BuildShoppingList(plan)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	pf.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: time-seeded)")
	cmd.Flags().BoolVar(&shopping, "shopping-list", false, "include the shopping list")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profileFlags mirrors the intake form fields.
type profileFlags struct {
	name       string
	gender     string
	age        int
	weight     float64
	weightUnit string
	height     float64
	heightUnit string
	feet       float64
	inches     float64
	diet       string
	goal       string
	activity   string
	allergies  string
	dislikes   string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "user name")
	fs.StringVar(&f.gender, "gender", string(profiles.GenderMale), "male, female or other")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.Float64Var(&f.weight, "weight", 0, "body weight")
	fs.StringVar(&f.weightUnit, "weight-unit", string(profiles.WeightUnitKg), "kg or lbs")
	fs.Float64Var(&f.height, "height", 0, "height in centimeters")
	fs.StringVar(&f.heightUnit, "height-unit", string(profiles.HeightUnitCm), "cm or ft")
	fs.Float64Var(&f.feet, "feet", 0, "height feet (with --height-unit=ft)")
	fs.Float64Var(&f.inches, "inches", 0, "height inches (with --height-unit=ft)")
	fs.StringVar(&f.diet, "diet", string(profiles.DietNone), "dietary preference")
	fs.StringVar(&f.goal, "goal", string(profiles.GoalBeHealthier), "lose_weight, bulk or be_healthier")
	fs.StringVar(&f.activity, "activity", string(profiles.ActivityModerate), "light, moderate or very_active")
	fs.StringVar(&f.allergies, "allergies", "", "comma-separated allergy terms")
	fs.StringVar(&f.dislikes, "dislikes", "", "comma-separated disliked ingredients")
	_ = cmd.MarkFlagRequired("name")
}

func (f *profileFlags) profile() (profiles.Profile, error) {
	p := profiles.Profile{
		Name:              f.name,
		Gender:            profiles.Gender(f.gender),
		Age:               f.age,
		Weight:            f.weight,
		WeightUnit:        profiles.WeightUnit(f.weightUnit),
		Height:            f.height,
		HeightUnit:        profiles.HeightUnit(f.heightUnit),
		DietaryPreference: profiles.DietaryPreference(f.diet),
		HealthGoal:        profiles.HealthGoal(f.goal),
		ActivityLevel:     profiles.ActivityLevel(f.activity),
		Allergies:         profiles.ParseTerms(f.allergies),
		Dislikes:          profiles.ParseTerms(f.dislikes),
	}
	if p.HeightUnit == profiles.HeightUnitFt {
		feet, inches := f.feet, f.inches
		p.HeightFeet = &feet
		p.HeightInches = &inches
	}
	return profiles.Normalize(p)
}
