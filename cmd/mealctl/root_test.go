package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--catalog", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	out, err := run(t, "catalog", "snack")
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	if !strings.HasPrefix(out, "SLOT") {
		t.Errorf("expected table header, got %q", out)
	}
	if strings.Contains(out, "breakfast") {
		t.Errorf("expected only snack rows, got %q", out)
	}

	if _, err := run(t, "catalog", "brunch"); err == nil {
		t.Error("expected error for unknown slot")
	}
}

func TestCaloriesCommand(t *testing.T) {
	out, err := run(t, "calories", "--name", "Alex", "--age", "30", "--weight", "70", "--height", "175", "--goal", "bulk")
	if err != nil {
		t.Fatalf("calories failed: %v", err)
	}

	var resp struct {
		Targets struct {
			MaintenanceKcal int `json:"maintenance_kcal"`
			TargetKcal      int `json:"target_kcal"`
		} `json:"targets"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if resp.Targets.TargetKcal != resp.Targets.MaintenanceKcal+500 {
		t.Errorf("expected bulk surplus, got %+v", resp.Targets)
	}

	if _, err := run(t, "calories", "--name", "Alex", "--age", "0", "--weight", "70", "--height", "175"); err == nil {
		t.Error("expected validation error")
	}
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	args := []string{"generate", "--name", "Alex", "--age", "30", "--weight", "70", "--height", "175", "--seed", "42", "--shopping-list"}

	first, err := run(t, args...)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := run(t, args...)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if first != second {
		t.Error("expected identical plans for the same seed")
	}

	var out generateOutput
	if err := json.Unmarshal([]byte(first), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Plan.TotalCalories != out.Plan.SumCalories() {
		t.Errorf("total %d does not match meals %d", out.Plan.TotalCalories, out.Plan.SumCalories())
	}
	if len(out.ShoppingList) == 0 {
		t.Error("expected shopping list")
	}
}
