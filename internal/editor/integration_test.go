package editor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"rubberstock/internal/api"
	"rubberstock/internal/db/mock"
	"rubberstock/internal/editor"
	"rubberstock/internal/handlers"
	"rubberstock/internal/server"
	"rubberstock/internal/wire"
	"rubberstock/models"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	client, _ := newClientWithURL(t)
	return client
}

func newClientWithURL(t *testing.T) (*api.Client, string) {
	t.Helper()
	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	srv, err := server.New(server.Config{Database: db})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		handlers.Configure(nil)
	})

	client, err := api.NewClient(api.Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("api.NewClient() error = %v", err)
	}
	return client, ts.URL
}

func TestEditorAgainstDevelopmentServer(t *testing.T) {
	client := newClient(t)
	e, err := editor.New(client)
	if err != nil {
		t.Fatalf("editor.New() error = %v", err)
	}
	ctx := context.Background()

	if err := e.AddIngredient(ctx, "Negro", models.Ingredient{Name: "Azufre", Quantity: 2, Unit: models.UnitKilograms}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}
	if err := e.UpdateIngredient(ctx, "Negro", 1, models.Ingredient{Name: "Espumante", Quantity: 700, Unit: models.UnitGrams}); err != nil {
		t.Fatalf("UpdateIngredient() error = %v", err)
	}

	formula, err := client.GetFormula(ctx, "Negro")
	if err != nil {
		t.Fatalf("GetFormula() error = %v", err)
	}
	want := []models.Ingredient{
		{Name: "Estabilizante", Quantity: 500, Unit: models.UnitGrams},
		{Name: "Espumante", Quantity: 700, Unit: models.UnitGrams},
		{Name: "Azufre", Quantity: 2, Unit: models.UnitKilograms},
	}
	if len(formula.Ingredients) != len(want) {
		t.Fatalf("ingredients = %+v, want %+v", formula.Ingredients, want)
	}
	for i := range want {
		if formula.Ingredients[i] != want[i] {
			t.Fatalf("ingredient %d = %+v, want %+v", i, formula.Ingredients[i], want[i])
		}
	}
	if formula.Revision != `"3"` {
		t.Fatalf("Revision = %q, want %q", formula.Revision, `"3"`)
	}

	if err := e.DeleteIngredient(ctx, "Negro", 3); !errors.Is(err, editor.ErrIndexOutOfRange) {
		t.Fatalf("DeleteIngredient(3) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := e.DeleteIngredient(ctx, "Violeta", 0); !errors.Is(err, editor.ErrFormulaNotFound) {
		t.Fatalf("DeleteIngredient(missing) error = %v, want ErrFormulaNotFound", err)
	}
}

func TestAddIngredientStoresUnitSuffixedName(t *testing.T) {
	client, baseURL := newClientWithURL(t)
	e, err := editor.New(client)
	if err != nil {
		t.Fatalf("editor.New() error = %v", err)
	}
	ctx := context.Background()

	if err := client.DeleteFormula(ctx, "Negro"); err != nil {
		t.Fatalf("DeleteFormula() error = %v", err)
	}
	seed := models.Formula{Name: "Negro", Ingredients: []models.Ingredient{{Name: "Estabilizante", Quantity: 500, Unit: models.UnitGrams}}}
	if err := client.CreateFormula(ctx, seed); err != nil {
		t.Fatalf("CreateFormula() error = %v", err)
	}

	if err := e.AddIngredient(ctx, "Negro", models.Ingredient{Name: "Espumante", Quantity: 650, Unit: models.UnitGrams}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	resp, err := http.Get(baseURL + "/formulas/Negro")
	if err != nil {
		t.Fatalf("GET formula: %v", err)
	}
	defer resp.Body.Close()
	var stored wire.FormulaPayload
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		t.Fatalf("decode formula: %v", err)
	}
	want := []wire.IngredientPayload{
		{Name: "Estabilizante [gr]", Quantity: 500},
		{Name: "Espumante [gr]", Quantity: 650},
	}
	if len(stored.Ingredients) != len(want) {
		t.Fatalf("stored ingredients = %+v, want %+v", stored.Ingredients, want)
	}
	for i := range want {
		if stored.Ingredients[i] != want[i] {
			t.Fatalf("stored ingredient %d = %+v, want %+v", i, stored.Ingredients[i], want[i])
		}
	}
}

func TestNullFormulaBodyIsNeverWrittenBack(t *testing.T) {
	var (
		mu   sync.Mutex
		puts [][]byte
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			puts = append(puts, body)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "null")
	}))
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("api.NewClient() error = %v", err)
	}
	e, err := editor.New(client)
	if err != nil {
		t.Fatalf("editor.New() error = %v", err)
	}

	err = e.AddIngredient(context.Background(), "Negro", models.Ingredient{Name: "Azufre", Quantity: 1, Unit: models.UnitKilograms})
	if !errors.Is(err, api.ErrDecode) {
		t.Fatalf("AddIngredient() error = %v, want ErrDecode", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(puts) != 0 {
		t.Fatalf("expected no PUT, got %q", puts)
	}
}
