package models

import "strings"

// Unit is the unit of measure of an ingredient quantity.
type Unit string

const (
	UnitGrams     Unit = "gr"
	UnitKilograms Unit = "kg"
	UnitLiters    Unit = "L"

	DefaultUnit = UnitGrams
)

// ParseUnit normalises a unit decoded from the wire. Liters are always the
// upper-case L; anything unrecognised falls back to DefaultUnit.
func ParseUnit(value string) Unit {
	unit, _ := LookupUnit(value)
	return unit
}

// LookupUnit normalises a unit typed by a user. A blank value is DefaultUnit;
// an unknown value reports false.
func LookupUnit(value string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "gr":
		return UnitGrams, true
	case "kg":
		return UnitKilograms, true
	case "l":
		return UnitLiters, true
	default:
		return DefaultUnit, false
	}
}

// Ingredient is a single line of a mixing formula.
type Ingredient struct {
	Name     string  `json:"nombre" validate:"required,notblank"`
	Quantity float64 `json:"cantidad" validate:"gte=0"`
	Unit     Unit    `json:"unidad" validate:"oneof=gr kg L"`
}

// Formula is a named mixing recipe for a rubber color.
//
// Name is the display name and the key the remote API uses; ID is derived
// from it once and is only used for local identity.
type Formula struct {
	ID          string       `json:"id"`
	Name        string       `json:"nombreColor" validate:"required,notblank"`
	Ingredients []Ingredient `json:"ingredientes" validate:"dive"`

	// Revision is the entity tag returned by the server for this snapshot,
	// empty when the server does not send one.
	Revision string `json:"-"`
}

// Clone returns a copy whose ingredient slice can be mutated independently.
func (f Formula) Clone() Formula {
	out := f
	out.Ingredients = append([]Ingredient(nil), f.Ingredients...)
	return out
}
