package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnknownSlot    = errors.New("unknown meal slot")
)

// recordNamespace seeds the name-based UUIDs of catalog records.
var recordNamespace = uuid.MustParse("6f2a1c3e-8d4b-4e7a-9b1f-2c5d7e9a0b13")

// Slot is a position in the daily plan.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
)

// Slots lists every slot in plan order.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// ParseSlot validates a slot name coming from a request.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotBreakfast:
		return SlotBreakfast, nil
	case SlotLunch:
		return SlotLunch, nil
	case SlotDinner:
		return SlotDinner, nil
	case SlotSnack, "snacks":
		return SlotSnack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// MealRecord is an immutable catalog entry.
type MealRecord struct {
	ID              uuid.UUID `json:"id" yaml:"id,omitempty"`
	Name            string    `json:"name" yaml:"name"`
	NutritionalInfo string    `json:"nutritional_info" yaml:"nutritional_info"`
	Ingredients     []string  `json:"ingredients" yaml:"ingredients"`
	Instructions    []string  `json:"instructions" yaml:"instructions"`
	PrepTime        string    `json:"prep_time" yaml:"prep_time"`
	Calories        int       `json:"calories" yaml:"calories"`
	ImageURL        string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// Catalog groups meal records by slot.
type Catalog struct {
	Breakfast []MealRecord `json:"breakfast" yaml:"breakfast"`
	Lunch     []MealRecord `json:"lunch" yaml:"lunch"`
	Dinner    []MealRecord `json:"dinner" yaml:"dinner"`
	Snacks    []MealRecord `json:"snacks" yaml:"snacks"`
}

// Records returns the records of a slot. The slice is shared and must not be modified.
func (c *Catalog) Records(slot Slot) []MealRecord {
	switch slot {
	case SlotBreakfast:
		return c.Breakfast
	case SlotLunch:
		return c.Lunch
	case SlotDinner:
		return c.Dinner
	case SlotSnack:
		return c.Snacks
	}
	return nil
}

// Size returns the total number of records.
func (c *Catalog) Size() int {
	return len(c.Breakfast) + len(c.Lunch) + len(c.Dinner) + len(c.Snacks)
}

// Provider gives read access to the catalog.
type Provider interface {
	GetCatalog(ctx context.Context) (*Catalog, error)
}

// StaticProvider serves a catalog loaded once at startup.
type StaticProvider struct {
	catalog *Catalog
}

func NewStaticProvider(c *Catalog) *StaticProvider {
	return &StaticProvider{catalog: c}
}

func (p *StaticProvider) GetCatalog(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.catalog == nil {
		return nil, fmt.Errorf("%w: catalog is not initialized", ErrInvalidCatalog)
	}
	return p.catalog, nil
}

// Default parses the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Load reads the catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, assigns stable ids and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	for _, slot := range Slots {
		records := c.Records(slot)
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: slot %s has no records", ErrInvalidCatalog, slot)
		}
		seen := make(map[string]bool, len(records))
		for i := range records {
			rec := &records[i]
			rec.Name = strings.TrimSpace(rec.Name)
			if rec.Name == "" {
				return nil, fmt.Errorf("%w: %s[%d] has no name", ErrInvalidCatalog, slot, i)
			}
			if seen[rec.Name] {
				return nil, fmt.Errorf("%w: duplicate %s record %q", ErrInvalidCatalog, slot, rec.Name)
			}
			seen[rec.Name] = true
			if rec.Calories < 0 {
				return nil, fmt.Errorf("%w: %s record %q has negative calories", ErrInvalidCatalog, slot, rec.Name)
			}
			if rec.ID == uuid.Nil {
				rec.ID = RecordID(slot, rec.Name)
			}
		}
	}

	return &c, nil
}

// RecordID derives the stable id of a record from its slot and name.
func RecordID(slot Slot, name string) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(string(slot)+"/"+name))
}
