package models

import (
	"gorm.io/gorm"
)

// Setting is a single entry of the local string-keyed state store.
type Setting struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

// StockItem is the persisted stock row served by the development API.
type StockItem struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Quantity int    `gorm:"not null;default:0" json:"quantity"`
}

// FormulaRecord is the persisted formula served by the development API.
type FormulaRecord struct {
	gorm.Model
	Name        string              `gorm:"uniqueIndex;not null" json:"name"`
	Version     int                 `gorm:"not null;default:1" json:"version"`
	Ingredients []FormulaIngredient `gorm:"foreignKey:FormulaID" json:"ingredients"`
}

// FormulaIngredient is one ingredient row of a FormulaRecord. Name holds the
// wire name verbatim, unit suffix included.
type FormulaIngredient struct {
	gorm.Model
	FormulaID uint    `gorm:"not null;index" json:"formula_id"` // Parent formula
	Position  int     `gorm:"not null" json:"position"`
	Name      string  `gorm:"not null" json:"name"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
}

// ServerModels lists the records migrated by the development API.
func ServerModels() []any {
	return []any{&StockItem{}, &FormulaRecord{}, &FormulaIngredient{}}
}
