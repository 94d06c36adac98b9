// Package wire converts between the JSON shapes of the remote stock API and
// the local models.
package wire

import (
	"math"
	"regexp"
	"strings"

	"rubberstock/models"
)

// ColorPayload is a stock entry as transmitted by the API.
type ColorPayload struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// IngredientPayload is a formula ingredient as transmitted by the API. The
// unit travels inside Name as a "[unit]" suffix.
type IngredientPayload struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// FormulaPayload is a formula as transmitted by the API.
type FormulaPayload struct {
	Name        string              `json:"name"`
	Ingredients []IngredientPayload `json:"ingredients"`
}

var unitSuffix = regexp.MustCompile(`(?i)\s*\[(gr|kg|l)\]$`)

// ColorFromWire maps an API stock entry to a local Color. Negative
// quantities clamp to zero.
func ColorFromWire(p ColorPayload) models.Color {
	return models.Color{
		ID:       models.Slug(p.Name),
		Name:     p.Name,
		Quantity: max(0, int(math.Round(p.Quantity))),
	}
}

// ColorToWire maps a local Color to its API shape.
func ColorToWire(c models.Color) ColorPayload {
	return ColorPayload{Name: c.Name, Quantity: float64(c.Quantity)}
}

// IngredientFromWire splits the unit suffix off a wire ingredient name.
// Names without a recognised suffix keep their original text and default to
// grams.
func IngredientFromWire(p IngredientPayload) models.Ingredient {
	match := unitSuffix.FindStringSubmatchIndex(p.Name)
	if match == nil {
		return models.Ingredient{Name: p.Name, Quantity: p.Quantity, Unit: models.DefaultUnit}
	}

	unit := p.Name[match[2]:match[3]]
	return models.Ingredient{
		Name:     strings.TrimSpace(p.Name[:match[0]]),
		Quantity: p.Quantity,
		Unit:     models.ParseUnit(unit),
	}
}

// IngredientToWire encodes the unit into the ingredient name as
// "<name> [<unit>]".
func IngredientToWire(i models.Ingredient) IngredientPayload {
	unit := models.ParseUnit(string(i.Unit))
	return IngredientPayload{
		Name:     strings.TrimSpace(i.Name) + " [" + string(unit) + "]",
		Quantity: i.Quantity,
	}
}

// FormulaFromWire maps an API formula to a local Formula, preserving
// ingredient order.
func FormulaFromWire(p FormulaPayload) models.Formula {
	ingredients := make([]models.Ingredient, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		ingredients = append(ingredients, IngredientFromWire(ing))
	}
	return models.Formula{
		ID:          models.Slug(p.Name),
		Name:        p.Name,
		Ingredients: ingredients,
	}
}

// FormulaToWire maps a local Formula to its API shape, preserving ingredient
// order.
func FormulaToWire(f models.Formula) FormulaPayload {
	ingredients := make([]IngredientPayload, 0, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		ingredients = append(ingredients, IngredientToWire(ing))
	}
	return FormulaPayload{Name: f.Name, Ingredients: ingredients}
}
