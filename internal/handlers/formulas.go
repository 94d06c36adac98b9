package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "rubberstock/internal/log"
	"rubberstock/internal/wire"
	"rubberstock/models"
)

var (
	errStaleRevision = errors.New("formula revision does not match")
	errNameTaken     = errors.New("formula already exists")
)

// ListFormulas serves GET /formulas in insertion order.
func ListFormulas(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()

	var records []models.FormulaRecord
	if err := preloadIngredients(database.WithContext(ctx)).Order("id asc").Find(&records).Error; err != nil {
		applog.Error(ctx, "failed to list formulas", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formulas")
		return
	}

	payload := make([]wire.FormulaPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, formulaPayload(record))
	}
	writeJSON(w, http.StatusOK, payload)
}

// ShowFormula serves GET /formulas/{name} with the record version as ETag.
func ShowFormula(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	record, ok := findFormula(w, r, database, nameParam(r))
	if !ok {
		return
	}
	w.Header().Set("ETag", etag(record.Version))
	writeJSON(w, http.StatusOK, formulaPayload(record))
}

// CreateFormula serves POST /formulas. An existing name yields 409.
func CreateFormula(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()

	payload, ok := decodeFormula(w, r)
	if !ok {
		return
	}

	var count int64
	if err := database.WithContext(ctx).Model(&models.FormulaRecord{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
		applog.Error(ctx, "failed to check formula name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create formula")
		return
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, "formula already exists")
		return
	}

	record := models.FormulaRecord{Name: payload.Name, Version: 1, Ingredients: ingredientRows(payload.Ingredients)}
	if err := database.WithContext(ctx).Create(&record).Error; err != nil {
		applog.Error(ctx, "failed to create formula", "error", err, "name", payload.Name)
		writeJSONError(w, http.StatusInternalServerError, "unable to create formula")
		return
	}

	applog.Debug(ctx, "formula created", "name", record.Name, "ingredients", len(record.Ingredients))
	w.Header().Set("ETag", etag(record.Version))
	writeJSON(w, http.StatusCreated, formulaPayload(record))
}

// ReplaceFormula serves PUT /formulas/{name}. The ingredient list is replaced
// wholesale and the version advances. A request whose If-Match names another
// version is rejected with 412 and a rename onto another formula with 409.
func ReplaceFormula(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()
	name := nameParam(r)

	payload, ok := decodeFormula(w, r)
	if !ok {
		return
	}
	ifMatch := strings.TrimSpace(r.Header.Get("If-Match"))

	var record models.FormulaRecord
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&record).Error; err != nil {
			return err
		}
		if ifMatch != "" && ifMatch != "*" && ifMatch != etag(record.Version) {
			return errStaleRevision
		}
		if payload.Name != record.Name {
			var count int64
			if err := tx.Model(&models.FormulaRecord{}).Where("name = ? AND id <> ?", payload.Name, record.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errNameTaken
			}
		}

		if err := tx.Unscoped().Where("formula_id = ?", record.ID).Delete(&models.FormulaIngredient{}).Error; err != nil {
			return err
		}

		record.Name = payload.Name
		record.Version++
		if err := tx.Model(&record).Updates(map[string]any{"name": record.Name, "version": record.Version}).Error; err != nil {
			return err
		}

		record.Ingredients = ingredientRows(payload.Ingredients)
		for i := range record.Ingredients {
			record.Ingredients[i].FormulaID = record.ID
		}
		if len(record.Ingredients) > 0 {
			return tx.Create(&record.Ingredients).Error
		}
		return nil
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeJSONError(w, http.StatusNotFound, "formula not found")
		return
	case errors.Is(err, errStaleRevision):
		applog.Info(ctx, "formula replace rejected", "name", name, "if_match", ifMatch, "version", record.Version)
		writeJSONError(w, http.StatusPreconditionFailed, errStaleRevision.Error())
		return
	case errors.Is(err, errNameTaken):
		writeJSONError(w, http.StatusConflict, errNameTaken.Error())
		return
	case err != nil:
		applog.Error(ctx, "failed to replace formula", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to update formula")
		return
	}

	w.Header().Set("ETag", etag(record.Version))
	writeJSON(w, http.StatusOK, formulaPayload(record))
}

// DeleteFormula serves DELETE /formulas/{name}.
func DeleteFormula(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()
	name := nameParam(r)

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.FormulaRecord
		if err := tx.Where("name = ?", name).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("formula_id = ?", record.ID).Delete(&models.FormulaIngredient{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&record).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONError(w, http.StatusNotFound, "formula not found")
		return
	}
	if err != nil {
		applog.Error(ctx, "failed to delete formula", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete formula")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func preloadIngredients(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	})
}

func findFormula(w http.ResponseWriter, r *http.Request, db *gorm.DB, name string) (models.FormulaRecord, bool) {
	ctx := r.Context()
	var record models.FormulaRecord
	err := preloadIngredients(db.WithContext(ctx)).Where("name = ?", name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONError(w, http.StatusNotFound, "formula not found")
		return record, false
	}
	if err != nil {
		applog.Error(ctx, "failed to load formula", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formula")
		return record, false
	}
	return record, true
}

func decodeFormula(w http.ResponseWriter, r *http.Request) (wire.FormulaPayload, bool) {
	var payload wire.FormulaPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(r.Context(), "invalid formula payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return payload, false
	}
	if blank(payload.Name) {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return payload, false
	}
	for i, ingredient := range payload.Ingredients {
		if blank(ingredient.Name) {
			writeJSONError(w, http.StatusBadRequest, "ingredient "+strconv.Itoa(i)+": name is required")
			return payload, false
		}
		if ingredient.Quantity < 0 {
			writeJSONError(w, http.StatusBadRequest, "ingredient "+strconv.Itoa(i)+": quantity must not be negative")
			return payload, false
		}
	}
	return payload, true
}

func ingredientRows(ingredients []wire.IngredientPayload) []models.FormulaIngredient {
	rows := make([]models.FormulaIngredient, 0, len(ingredients))
	for position, ingredient := range ingredients {
		rows = append(rows, models.FormulaIngredient{
			Position: position,
			Name:     ingredient.Name,
			Quantity: ingredient.Quantity,
		})
	}
	return rows
}

func formulaPayload(record models.FormulaRecord) wire.FormulaPayload {
	ingredients := make([]wire.IngredientPayload, 0, len(record.Ingredients))
	for _, ingredient := range record.Ingredients {
		ingredients = append(ingredients, wire.IngredientPayload{Name: ingredient.Name, Quantity: ingredient.Quantity})
	}
	return wire.FormulaPayload{Name: record.Name, Ingredients: ingredients}
}

func etag(version int) string {
	return `"` + strconv.Itoa(version) + `"`
}
