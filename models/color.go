package models

import "strings"

// Color is a rubber compound color held in stock.
type Color struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,notblank"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// NewColor builds a Color whose ID is derived from its name.
func NewColor(name string, quantity int) Color {
	return Color{ID: Slug(name), Name: name, Quantity: quantity}
}

// SameName reports whether two color names are equal ignoring case and
// surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Slug derives the local identifier of a color or formula from its display
// name: lower case, with each run of whitespace collapsed to a single hyphen.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
