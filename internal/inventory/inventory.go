// Package inventory implements the color stock list: loading it in the
// user's saved order and applying add, adjust, delete and reorder actions.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	applog "rubberstock/internal/log"
	"rubberstock/internal/metrics"
	"rubberstock/internal/order"
	"rubberstock/models"
)

var (
	// ErrDuplicateColor is returned by Add when the name is already in the list.
	ErrDuplicateColor = errors.New("inventory: color already exists")
	// ErrInvalidColor is returned by Add for a blank name or negative quantity.
	ErrInvalidColor = errors.New("inventory: invalid color")
)

// ColorClient is the subset of the API client used by Service.
type ColorClient interface {
	ListColors(ctx context.Context) ([]models.Color, error)
	CreateColor(ctx context.Context, color models.Color) error
	ReplaceColor(ctx context.Context, color models.Color) error
	DeleteColor(ctx context.Context, name string) error
}

// Options configures a Service.
type Options struct {
	// PushOrder replays every color to the server, in list order, after a
	// reorder.
	PushOrder bool
	Metrics   *metrics.Collector
}

// Service owns the color list workflow. Calls are expected to be issued
// one at a time; nothing here guards against overlapping mutations.
type Service struct {
	colors    ColorClient
	order     order.Store
	pushOrder bool
	metrics   *metrics.Collector
}

// NewService wires a Service.
func NewService(colors ColorClient, store order.Store, opts Options) (*Service, error) {
	if colors == nil {
		return nil, errors.New("inventory: color client is nil")
	}
	if store == nil {
		return nil, errors.New("inventory: order store is nil")
	}
	return &Service{colors: colors, order: store, pushOrder: opts.PushOrder, metrics: opts.Metrics}, nil
}

// Load fetches the live color list and arranges it in the saved order. When
// no order has been saved yet, the server order is adopted and persisted.
// A failed list call is returned to the caller; order store failures are
// logged and the server order is used.
func (s *Service) Load(ctx context.Context) ([]models.Color, error) {
	live, err := s.colors.ListColors(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: load colors: %w", err)
	}

	saved, err := s.order.Load(ctx)
	if err != nil {
		// The saved order may still be intact, so it is not overwritten here.
		s.metrics.OrderPersistFailed()
		applog.Error(ctx, "failed to read saved color order", "error", err)
		return live, nil
	}

	if len(saved) > 0 {
		return order.Reconcile(live, saved), nil
	}

	if err := s.order.Save(ctx, order.IDs(live)); err != nil {
		s.metrics.OrderPersistFailed()
		applog.Error(ctx, "failed to seed color order", "error", err)
	} else {
		applog.Debug(ctx, "color order seeded from server", "count", len(live))
	}
	return live, nil
}

// Add creates a color after checking it against the list the caller holds.
// Validation failures return before any request is made.
func (s *Service) Add(ctx context.Context, current []models.Color, name string, quantity int) (models.Color, error) {
	name = strings.TrimSpace(name)
	color := models.NewColor(name, quantity)
	if err := models.Validate(color); err != nil {
		return models.Color{}, fmt.Errorf("%w: %w", ErrInvalidColor, err)
	}

	for _, existing := range current {
		if models.SameName(existing.Name, name) {
			return models.Color{}, fmt.Errorf("%w: %q", ErrDuplicateColor, name)
		}
	}

	if err := s.colors.CreateColor(ctx, color); err != nil {
		return models.Color{}, fmt.Errorf("inventory: add color %q: %w", name, err)
	}
	applog.Info(ctx, "color added", "name", name, "quantity", quantity)
	return color, nil
}

// AdjustQuantity adds delta to the color's stock, never going below zero, and
// replaces the server record. The adjusted color is returned even when the
// replace fails so callers can decide whether to reload.
func (s *Service) AdjustQuantity(ctx context.Context, color models.Color, delta int) (models.Color, error) {
	updated := color
	updated.Quantity = max(0, color.Quantity+delta)

	if err := s.colors.ReplaceColor(ctx, updated); err != nil {
		return updated, fmt.Errorf("inventory: adjust %q: %w", color.Name, err)
	}
	return updated, nil
}

// Delete removes the color with the given name.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.colors.DeleteColor(ctx, name); err != nil {
		return fmt.Errorf("inventory: delete %q: %w", name, err)
	}
	applog.Info(ctx, "color deleted", "name", name)
	return nil
}

// Reorder saves colors as the new display order. A failed save is logged
// and does not stop the reorder; the next Load falls back to whatever order
// was last saved. With PushOrder set, each color is then replaced on the
// server in list order, stopping at the first failure.
func (s *Service) Reorder(ctx context.Context, colors []models.Color) error {
	if err := s.order.Save(ctx, order.IDs(colors)); err != nil {
		s.metrics.OrderPersistFailed()
		applog.Error(ctx, "failed to save color order", "error", err)
	}

	if !s.pushOrder {
		return nil
	}
	for _, color := range colors {
		if err := s.colors.ReplaceColor(ctx, color); err != nil {
			return fmt.Errorf("inventory: push order at %q: %w", color.Name, err)
		}
	}
	return nil
}

// Move returns a copy of colors with the element at from moved to index to.
func Move(colors []models.Color, from, to int) ([]models.Color, error) {
	if from < 0 || from >= len(colors) || to < 0 || to >= len(colors) {
		return nil, fmt.Errorf("inventory: move %d -> %d out of range [0, %d)", from, to, len(colors))
	}
	out := make([]models.Color, 0, len(colors))
	out = append(out, colors[:from]...)
	out = append(out, colors[from+1:]...)
	moved := colors[from]
	out = append(out[:to], append([]models.Color{moved}, out[to:]...)...)
	return out, nil
}
