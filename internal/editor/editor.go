// Package editor edits the ingredient list of a single formula.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"rubberstock/internal/api"
	applog "rubberstock/internal/log"
	"rubberstock/models"
)

var (
	// ErrFormulaNotFound is returned when the named formula does not exist.
	// It also matches api.ErrNotFound.
	ErrFormulaNotFound = fmt.Errorf("editor: formula not found: %w", api.ErrNotFound)
	// ErrIndexOutOfRange is returned for an ingredient index outside the list.
	ErrIndexOutOfRange = errors.New("editor: ingredient index out of range")
	// ErrInvalidIngredient is returned for an ingredient that fails validation.
	ErrInvalidIngredient = errors.New("editor: invalid ingredient")
)

// FormulaClient is the subset of the API client used by Editor.
type FormulaClient interface {
	GetFormula(ctx context.Context, name string) (models.Formula, error)
	ReplaceFormula(ctx context.Context, name string, formula models.Formula, opts ...api.ReplaceOption) error
}

// Editor applies one ingredient change per call as a fetch, mutate and
// replace cycle against the server.
//
// The cycle is not atomic. When the server reports a revision it is sent back
// with If-Match so a concurrent edit surfaces as api.ErrConflict; servers
// without revisions get a plain replace and the last write wins.
type Editor struct {
	formulas FormulaClient
}

// New returns an Editor backed by formulas.
func New(formulas FormulaClient) (*Editor, error) {
	if formulas == nil {
		return nil, errors.New("editor: formula client is nil")
	}
	return &Editor{formulas: formulas}, nil
}

// AddIngredient appends ing to the formula stored under name.
func (e *Editor) AddIngredient(ctx context.Context, name string, ing models.Ingredient) error {
	ing, err := normalize(ing)
	if err != nil {
		return err
	}
	return e.apply(ctx, "add", name, func(ingredients []models.Ingredient) ([]models.Ingredient, error) {
		return append(ingredients, ing), nil
	})
}

// UpdateIngredient replaces the ingredient at index.
func (e *Editor) UpdateIngredient(ctx context.Context, name string, index int, ing models.Ingredient) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	ing, err := normalize(ing)
	if err != nil {
		return err
	}
	return e.apply(ctx, "update", name, func(ingredients []models.Ingredient) ([]models.Ingredient, error) {
		if index >= len(ingredients) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(ingredients))
		}
		ingredients[index] = ing
		return ingredients, nil
	})
}

// DeleteIngredient removes the ingredient at index.
func (e *Editor) DeleteIngredient(ctx context.Context, name string, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return e.apply(ctx, "delete", name, func(ingredients []models.Ingredient) ([]models.Ingredient, error) {
		if index >= len(ingredients) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(ingredients))
		}
		return slices.Delete(ingredients, index, index+1), nil
	})
}

func (e *Editor) apply(ctx context.Context, op, name string, mutate func([]models.Ingredient) ([]models.Ingredient, error)) error {
	if strings.TrimSpace(name) == "" {
		return api.ErrEmptyKey
	}
	ctx = applog.WithAttrs(ctx, "formula", name, "op", op)

	current, err := e.formulas.GetFormula(ctx, name)
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrFormulaNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("editor: fetch %q: %w", name, err)
	}

	next := current.Clone()
	next.Ingredients, err = mutate(next.Ingredients)
	if err != nil {
		return err
	}

	var opts []api.ReplaceOption
	if current.Revision != "" {
		opts = append(opts, api.IfMatch(current.Revision))
	}
	if err := e.formulas.ReplaceFormula(ctx, name, next, opts...); err != nil {
		return fmt.Errorf("editor: %s ingredient in %q: %w", op, name, err)
	}

	applog.Debug(ctx, "formula ingredients updated", "count", len(next.Ingredients))
	return nil
}

func normalize(ing models.Ingredient) (models.Ingredient, error) {
	ing.Name = strings.TrimSpace(ing.Name)
	unit, ok := models.LookupUnit(string(ing.Unit))
	if !ok {
		return models.Ingredient{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidIngredient, ing.Unit)
	}
	ing.Unit = unit
	if err := models.Validate(ing); err != nil {
		return models.Ingredient{}, fmt.Errorf("%w: %w", ErrInvalidIngredient, err)
	}
	return ing, nil
}
