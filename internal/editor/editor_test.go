package editor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"rubberstock/internal/api"
	"rubberstock/models"
)

type stubFormulas struct {
	formula models.Formula
	getErr  error

	gets      int
	replaced  []models.Formula
	names     []string
	revisions []int
}

func (s *stubFormulas) GetFormula(_ context.Context, name string) (models.Formula, error) {
	s.gets++
	if s.getErr != nil {
		return models.Formula{}, s.getErr
	}
	return s.formula, nil
}

func (s *stubFormulas) ReplaceFormula(_ context.Context, name string, formula models.Formula, opts ...api.ReplaceOption) error {
	s.names = append(s.names, name)
	s.replaced = append(s.replaced, formula)
	s.revisions = append(s.revisions, len(opts))
	return nil
}

func negro() models.Formula {
	return models.Formula{
		ID:   "negro",
		Name: "Negro",
		Ingredients: []models.Ingredient{
			{Name: "Estabilizante", Quantity: 500, Unit: models.UnitGrams},
			{Name: "Espumante", Quantity: 650, Unit: models.UnitGrams},
		},
	}
}

func newTestEditor(t *testing.T, client FormulaClient) *Editor {
	t.Helper()
	e, err := New(client)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestOutOfRangeIndexNeverReplaces(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		index int
		fetch bool
	}{
		{"negative", -1, false},
		{"past end", 2, true},
		{"far past end", 10, true},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &stubFormulas{formula: negro()}
			e := newTestEditor(t, client)
			ctx := context.Background()

			err := e.UpdateIngredient(ctx, "Negro", tt.index, models.Ingredient{Name: "Azufre", Quantity: 1, Unit: models.UnitKilograms})
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("UpdateIngredient() error = %v, want ErrIndexOutOfRange", err)
			}
			if err := e.DeleteIngredient(ctx, "Negro", tt.index); !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("DeleteIngredient() error = %v, want ErrIndexOutOfRange", err)
			}
			if len(client.replaced) != 0 {
				t.Fatalf("expected no replace calls, got %d", len(client.replaced))
			}
			if fetched := client.gets > 0; fetched != tt.fetch {
				t.Fatalf("fetched = %v, want %v", fetched, tt.fetch)
			}
		})
	}
}

func TestAddIngredientAppendsAndKeepsKey(t *testing.T) {
	t.Parallel()

	client := &stubFormulas{formula: negro()}
	e := newTestEditor(t, client)

	err := e.AddIngredient(context.Background(), "Negro", models.Ingredient{Name: " Azufre ", Quantity: 1.5, Unit: "KG"})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	if !reflect.DeepEqual(client.names, []string{"Negro"}) {
		t.Fatalf("replace keys = %v, want [Negro]", client.names)
	}
	got := client.replaced[0].Ingredients
	if len(got) != 3 {
		t.Fatalf("ingredients = %d, want 3", len(got))
	}
	if want := (models.Ingredient{Name: "Azufre", Quantity: 1.5, Unit: models.UnitKilograms}); got[2] != want {
		t.Fatalf("appended = %+v, want %+v", got[2], want)
	}
	if client.revisions[0] != 0 {
		t.Fatal("expected unconditional replace without a revision")
	}
}

func TestUpdateAndDeleteIngredient(t *testing.T) {
	t.Parallel()

	formula := negro()
	formula.Revision = `"4"`
	client := &stubFormulas{formula: formula}
	e := newTestEditor(t, client)
	ctx := context.Background()

	if err := e.UpdateIngredient(ctx, "Negro", 0, models.Ingredient{Name: "Estabilizante", Quantity: 520}); err != nil {
		t.Fatalf("UpdateIngredient() error = %v", err)
	}
	if got := client.replaced[0].Ingredients[0]; got.Quantity != 520 || got.Unit != models.UnitGrams {
		t.Fatalf("updated = %+v", got)
	}

	if err := e.DeleteIngredient(ctx, "Negro", 0); err != nil {
		t.Fatalf("DeleteIngredient() error = %v", err)
	}
	remaining := client.replaced[1].Ingredients
	if len(remaining) != 1 || remaining[0].Name != "Espumante" {
		t.Fatalf("remaining = %+v", remaining)
	}
	if client.revisions[0] != 1 || client.revisions[1] != 1 {
		t.Fatalf("expected conditional replaces, got %v", client.revisions)
	}
	if len(client.formula.Ingredients) != 2 {
		t.Fatal("editor mutated the fetched formula")
	}
}

func TestInvalidIngredientRejectedBeforeFetch(t *testing.T) {
	t.Parallel()

	client := &stubFormulas{formula: negro()}
	e := newTestEditor(t, client)

	cases := []models.Ingredient{
		{Name: "  ", Quantity: 1},
		{Name: "Azufre", Quantity: -1},
		{Name: "Azufre", Quantity: 1, Unit: "oz"},
	}
	for _, ing := range cases {
		if err := e.AddIngredient(context.Background(), "Negro", ing); !errors.Is(err, ErrInvalidIngredient) {
			t.Fatalf("AddIngredient(%+v) error = %v, want ErrInvalidIngredient", ing, err)
		}
	}
	if client.gets != 0 {
		t.Fatalf("expected no fetch, got %d", client.gets)
	}
}

func TestMissingFormula(t *testing.T) {
	t.Parallel()

	client := &stubFormulas{getErr: fmt.Errorf("wrapped: %w", api.ErrNotFound)}
	e := newTestEditor(t, client)

	err := e.DeleteIngredient(context.Background(), "Violeta", 0)
	if !errors.Is(err, ErrFormulaNotFound) || !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("DeleteIngredient() error = %v, want ErrFormulaNotFound", err)
	}
	if len(client.replaced) != 0 {
		t.Fatal("expected no replace calls")
	}

	if err := e.AddIngredient(context.Background(), " ", models.Ingredient{Name: "Azufre"}); !errors.Is(err, api.ErrEmptyKey) {
		t.Fatalf("AddIngredient(blank name) error = %v, want ErrEmptyKey", err)
	}
}

func TestMalformedFetchNeverReplaces(t *testing.T) {
	t.Parallel()

	client := &stubFormulas{getErr: fmt.Errorf("wrapped: %w", api.ErrDecode)}
	e := newTestEditor(t, client)

	err := e.AddIngredient(context.Background(), "Negro", models.Ingredient{Name: "Azufre", Quantity: 1, Unit: models.UnitKilograms})
	if !errors.Is(err, api.ErrDecode) {
		t.Fatalf("AddIngredient() error = %v, want ErrDecode", err)
	}
	if errors.Is(err, ErrFormulaNotFound) {
		t.Fatal("malformed response must not read as a missing formula")
	}
	if len(client.replaced) != 0 {
		t.Fatalf("expected no replace calls, got %d", len(client.replaced))
	}
}
