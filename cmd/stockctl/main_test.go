package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"rubberstock/internal/api"
	"rubberstock/internal/db/mock"
	"rubberstock/internal/handlers"
	"rubberstock/internal/server"
)

type harness struct {
	t        *testing.T
	apiURL   string
	stateURL string
	envFile  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	srv, err := server.New(server.Config{Database: database})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		handlers.Configure(nil)
	})

	dir := t.TempDir()
	return &harness{
		t:        t,
		apiURL:   ts.URL,
		stateURL: filepath.Join(dir, "state.db"),
		envFile:  filepath.Join(dir, "missing.env"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api-url", h.apiURL, "--state", h.stateURL, "--env-file", h.envFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String() + errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("stockctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func linesContaining(out, needle string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestColorsWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("colors", "list")
	if !strings.Contains(out, "negro-pega") || !strings.Contains(out, "Negro Pega") {
		t.Fatalf("colors list missing seeded color:\n%s", out)
	}

	h.mustRun("colors", "add", "Azul Marino", "4")
	if _, err := h.run("colors", "add", "azul marino", "1"); err == nil {
		t.Fatal("expected duplicate add to fail")
	}

	out = h.mustRun("colors", "adjust", "--", "beige", "-20")
	if !strings.Contains(out, "Beige: 12 -> 0") {
		t.Fatalf("unexpected adjust output: %q", out)
	}

	h.mustRun("colors", "reorder", "azul-marino", "crudo")
	out = h.mustRun("colors", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 3 || !strings.Contains(lines[1], "azul-marino") || !strings.Contains(lines[2], "crudo") {
		t.Fatalf("saved order not applied on list:\n%s", out)
	}

	h.mustRun("colors", "reorder", "--from", "0", "--to", "1")
	out = h.mustRun("colors", "list")
	lines = strings.Split(strings.TrimSpace(out), "\n")
	if !strings.Contains(lines[1], "crudo") || !strings.Contains(lines[2], "azul-marino") {
		t.Fatalf("move not applied:\n%s", out)
	}

	h.mustRun("colors", "delete", "Azul Marino")
	if got := linesContaining(h.mustRun("colors", "list"), "azul-marino"); len(got) != 0 {
		t.Fatalf("deleted color still listed: %v", got)
	}
}

func TestFormulaAndIngredientWorkflow(t *testing.T) {
	h := newHarness(t)

	h.mustRun("formulas", "create", "Azul Marino", "--ingredient", "Pigmento:2:kg", "--ingredient", "Espumante:650")
	out := h.mustRun("formulas", "show", "azul-marino")
	if !strings.Contains(out, "Pigmento") || !strings.Contains(out, "kg") {
		t.Fatalf("formulas show by id missing ingredient:\n%s", out)
	}

	h.mustRun("ingredients", "add", "Azul Marino", "Azufre", "1.5", "kg")
	h.mustRun("ingredients", "update", "Azul Marino", "1", "Espumante", "700", "gr")
	h.mustRun("ingredients", "delete", "Azul Marino", "0")

	out = h.mustRun("formulas", "show", "Azul Marino")
	if strings.Contains(out, "Pigmento") || !strings.Contains(out, "700") || !strings.Contains(out, "Azufre") {
		t.Fatalf("unexpected formula after edits:\n%s", out)
	}

	if _, err := h.run("ingredients", "delete", "Azul Marino", "9"); err == nil {
		t.Fatal("expected out of range delete to fail")
	}

	h.mustRun("formulas", "delete", "Azul Marino")
	_, err := h.run("formulas", "show", "Azul Marino")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("show deleted formula error = %v, want ErrNotFound", err)
	}
}

func TestFormulasListDegradesWhenServerDown(t *testing.T) {
	h := newHarness(t)
	h.apiURL = "http://127.0.0.1:1"

	out, err := h.run("formulas", "list")
	if err != nil {
		t.Fatalf("formulas list error = %v", err)
	}
	if !strings.Contains(out, "warning: formulas could not be loaded") {
		t.Fatalf("expected warning, got:\n%s", out)
	}
}

func TestParseIngredientFlag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value   string
		wantErr bool
		unit    string
	}{
		{"Estabilizante:500:gr", false, "gr"},
		{"Aceite:2:L", false, "L"},
		{"Espumante:650", false, "gr"},
		{"Espumante", true, ""},
		{"Espumante:mucho", true, ""},
		{"Espumante:650:oz", true, ""},
		{"Aceite:2:l", false, "L"},
	}
	for _, tt := range cases {
		ing, err := parseIngredientFlag(tt.value)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseIngredientFlag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err == nil && string(ing.Unit) != tt.unit {
			t.Fatalf("parseIngredientFlag(%q) unit = %q, want %q", tt.value, ing.Unit, tt.unit)
		}
	}
}
