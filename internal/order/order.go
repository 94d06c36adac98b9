// Package order keeps the user's manual ordering of the color list. The
// server has no notion of order; the saved sequence of color ids is a local
// annotation merged into every load.
package order

import (
	"context"
	"slices"

	"rubberstock/models"
)

// Key is the fixed slot under which the color order is persisted.
const Key = "color_order"

// Store persists the ordered sequence of color ids.
type Store interface {
	// Load returns the saved order, or an empty slice when none was saved.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the saved order.
	Save(ctx context.Context, ids []string) error
}

// Reconcile sorts live into the saved order. Colors whose ids appear in saved
// come first, by their saved position; the rest follow in their original
// relative order. live is not modified.
func Reconcile(live []models.Color, saved []string) []models.Color {
	out := slices.Clone(live)
	if len(saved) == 0 {
		return out
	}

	position := make(map[string]int, len(saved))
	for i, id := range saved {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	slices.SortStableFunc(out, func(a, b models.Color) int {
		ia, okA := position[a.ID]
		ib, okB := position[b.ID]
		switch {
		case okA && okB:
			return ia - ib
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return out
}

// IDs returns the ids of colors in order.
func IDs(colors []models.Color) []string {
	ids := make([]string, 0, len(colors))
	for _, c := range colors {
		ids = append(ids, c.ID)
	}
	return ids
}
