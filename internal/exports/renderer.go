package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/jung-kurt/gofpdf"
)

// Document is everything an export contains.
type Document struct {
	Plan         mealplans.StoredPlanDTO
	ShoppingList []string
	GeneratedAt  time.Time
}

type slotMeal struct {
	slot string
	meal catalog.MealRecord
}

func (d Document) meals() []slotMeal {
	meals := []slotMeal{
		{"Breakfast", d.Plan.Plan.Breakfast},
		{"Lunch", d.Plan.Plan.Lunch},
		{"Dinner", d.Plan.Plan.Dinner},
	}
	for i, s := range d.Plan.Plan.Snacks {
		meals = append(meals, slotMeal{fmt.Sprintf("Snack %d", i+1), s})
	}
	return meals
}

// Render encodes the document in the requested format.
func Render(format string, doc Document) ([]byte, error) {
	switch format {
	case FormatPDF:
		return renderPDF(doc)
	case FormatCSV:
		return renderCSV(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// renderCSV writes one row per meal, a total row and one row per shopping item
func renderCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"section", "slot", "name", "calories", "prep_time"}); err != nil {
		return nil, err
	}

	for _, m := range doc.meals() {
		row := []string{"meal", m.slot, m.meal.Name, strconv.Itoa(m.meal.Calories), m.meal.PrepTime}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	total := []string{"total", "", "", strconv.Itoa(doc.Plan.Plan.TotalCalories), ""}
	if err := w.Write(total); err != nil {
		return nil, err
	}
	target := []string{"target", string(doc.Plan.Targets.HealthGoal), "", strconv.Itoa(doc.Plan.Targets.TargetKcal), ""}
	if err := w.Write(target); err != nil {
		return nil, err
	}

	for _, item := range doc.ShoppingList {
		if err := w.Write([]string{"shopping", "", item, "", ""}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// renderPDF lays out the plan, the recipes and the shopping list on A4 pages
func renderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Meal plan for "+doc.Plan.User, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Meal plan for "+doc.Plan.User))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	targets := doc.Plan.Targets
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Maintenance: %d kcal   Target: %d kcal   Plan total: %d kcal",
		targets.MaintenanceKcal, targets.TargetKcal, doc.Plan.Plan.TotalCalories))
	pdf.Ln(10)

	drawMealsTable(pdf, tr, doc.meals())

	for _, m := range doc.meals() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(m.slot+": "+m.meal.Name))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 9)
		if m.meal.NutritionalInfo != "" {
			pdf.MultiCell(0, 5, tr(m.meal.NutritionalInfo), "", "L", false)
		}
		for _, ingredient := range m.meal.Ingredients {
			pdf.MultiCell(0, 5, tr("- "+ingredient), "", "L", false)
		}
		for i, step := range m.meal.Instructions {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, step)), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Shopping list")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range doc.ShoppingList {
		pdf.MultiCell(0, 6, tr("[ ] "+item), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func drawMealsTable(pdf *gofpdf.Fpdf, tr func(string) string, meals []slotMeal) {
	widths := []float64{30, 110, 25, 25}
	headers := []string{"Slot", "Meal", "Calories", "Prep"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, m := range meals {
		name := m.meal.Name
		if r := []rune(name); len(r) > 60 {
			name = string(r[:57]) + "..."
		}
		pdf.CellFormat(widths[0], 6, m.slot, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, strconv.Itoa(m.meal.Calories), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(m.meal.PrepTime), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
