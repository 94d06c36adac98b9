package handlers

import (
	"errors"
	"math"
	"net/http"

	"gorm.io/gorm"

	applog "rubberstock/internal/log"
	"rubberstock/internal/wire"
	"rubberstock/models"
)

// ListStock serves GET /stock in insertion order.
func ListStock(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()

	var items []models.StockItem
	if err := database.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		applog.Error(ctx, "failed to list stock", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load stock")
		return
	}

	payload := make([]wire.ColorPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, stockPayload(item))
	}
	writeJSON(w, http.StatusOK, payload)
}

// ShowStock serves GET /stock/{name}.
func ShowStock(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	item, ok := findStock(w, r, nameParam(r))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stockPayload(item))
}

// CreateStock serves POST /stock. An existing name yields 409.
func CreateStock(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()

	payload, ok := decodeStock(w, r)
	if !ok {
		return
	}

	var count int64
	if err := database.WithContext(ctx).Model(&models.StockItem{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
		applog.Error(ctx, "failed to check stock name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create stock entry")
		return
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, "stock entry already exists")
		return
	}

	item := models.StockItem{Name: payload.Name, Quantity: roundQuantity(payload.Quantity)}
	if err := database.WithContext(ctx).Create(&item).Error; err != nil {
		applog.Error(ctx, "failed to create stock entry", "error", err, "name", payload.Name)
		writeJSONError(w, http.StatusInternalServerError, "unable to create stock entry")
		return
	}

	applog.Debug(ctx, "stock entry created", "name", item.Name, "quantity", item.Quantity)
	writeJSON(w, http.StatusCreated, stockPayload(item))
}

// ReplaceStock serves PUT /stock/{name}. The body may rename the entry;
// renaming onto another entry yields 409.
func ReplaceStock(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()

	item, ok := findStock(w, r, nameParam(r))
	if !ok {
		return
	}
	payload, ok := decodeStock(w, r)
	if !ok {
		return
	}

	if payload.Name != item.Name {
		var count int64
		if err := database.WithContext(ctx).Model(&models.StockItem{}).Where("name = ? AND id <> ?", payload.Name, item.ID).Count(&count).Error; err != nil {
			applog.Error(ctx, "failed to check stock name", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to update stock entry")
			return
		}
		if count > 0 {
			writeJSONError(w, http.StatusConflict, "stock entry already exists")
			return
		}
	}

	updates := map[string]any{
		"name":     payload.Name,
		"quantity": roundQuantity(payload.Quantity),
	}
	if err := database.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update stock entry", "error", err, "name", item.Name)
		writeJSONError(w, http.StatusInternalServerError, "unable to update stock entry")
		return
	}

	item.Name = payload.Name
	item.Quantity = roundQuantity(payload.Quantity)
	writeJSON(w, http.StatusOK, stockPayload(item))
}

// DeleteStock serves DELETE /stock/{name}.
func DeleteStock(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ctx := r.Context()
	name := nameParam(r)

	result := database.WithContext(ctx).Unscoped().Where("name = ?", name).Delete(&models.StockItem{})
	if result.Error != nil {
		applog.Error(ctx, "failed to delete stock entry", "error", result.Error, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete stock entry")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "stock entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func findStock(w http.ResponseWriter, r *http.Request, name string) (models.StockItem, bool) {
	ctx := r.Context()
	var item models.StockItem
	err := database.WithContext(ctx).Where("name = ?", name).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONError(w, http.StatusNotFound, "stock entry not found")
		return item, false
	}
	if err != nil {
		applog.Error(ctx, "failed to load stock entry", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to load stock entry")
		return item, false
	}
	return item, true
}

func decodeStock(w http.ResponseWriter, r *http.Request) (wire.ColorPayload, bool) {
	var payload wire.ColorPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(r.Context(), "invalid stock payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return payload, false
	}
	if blank(payload.Name) {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return payload, false
	}
	if payload.Quantity < 0 {
		writeJSONError(w, http.StatusBadRequest, "quantity must not be negative")
		return payload, false
	}
	return payload, true
}

func stockPayload(item models.StockItem) wire.ColorPayload {
	return wire.ColorPayload{Name: item.Name, Quantity: float64(item.Quantity)}
}

func roundQuantity(quantity float64) int {
	return int(math.Round(quantity))
}
