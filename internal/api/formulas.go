package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"rubberstock/internal/wire"
	"rubberstock/models"
)

const (
	formulasPath     = "/formulas"
	formulasResource = "formulas"
)

// ReplaceOption customises a ReplaceFormula call.
type ReplaceOption func(*call)

// IfMatch makes the replace conditional on the server still holding the given
// revision. An empty revision leaves the request unconditional.
func IfMatch(revision string) ReplaceOption {
	return func(c *call) {
		c.ifMatch = strings.TrimSpace(revision)
	}
}

// ListFormulas returns every formula in server order.
func (c *Client) ListFormulas(ctx context.Context) ([]models.Formula, error) {
	var payload []wire.FormulaPayload
	if _, err := c.do(ctx, call{resource: formulasResource, method: http.MethodGet, path: formulasPath, out: &payload}); err != nil {
		return nil, err
	}

	formulas := make([]models.Formula, 0, len(payload))
	for _, p := range payload {
		formulas = append(formulas, wire.FormulaFromWire(p))
	}
	return formulas, nil
}

// GetFormula fetches a formula by its display name. A missing formula yields
// an error matching ErrNotFound; a body without a named formula matches
// ErrDecode.
func (c *Client) GetFormula(ctx context.Context, name string) (models.Formula, error) {
	if strings.TrimSpace(name) == "" {
		return models.Formula{}, ErrEmptyKey
	}

	var payload *wire.FormulaPayload
	path := keyPath(formulasPath, name)
	header, err := c.do(ctx, call{resource: formulasResource, method: http.MethodGet, path: path, out: &payload})
	if err != nil {
		return models.Formula{}, err
	}
	if payload == nil || strings.TrimSpace(payload.Name) == "" {
		return models.Formula{}, fmt.Errorf("api: GET %s: %w: response has no formula name", path, ErrDecode)
	}

	formula := wire.FormulaFromWire(*payload)
	formula.Revision = header.Get("ETag")
	return formula, nil
}

// FormulaByID resolves a local formula id to its formula by listing the
// collection. Names are never reconstructed from ids.
func (c *Client) FormulaByID(ctx context.Context, id string) (models.Formula, error) {
	if strings.TrimSpace(id) == "" {
		return models.Formula{}, ErrEmptyKey
	}

	formulas, err := c.ListFormulas(ctx)
	if err != nil {
		return models.Formula{}, err
	}
	for _, f := range formulas {
		if f.ID == id {
			return f, nil
		}
	}
	return models.Formula{}, fmt.Errorf("formula id %q: %w", id, ErrNotFound)
}

// CreateFormula adds a formula. The created resource is not returned.
func (c *Client) CreateFormula(ctx context.Context, formula models.Formula) error {
	_, err := c.do(ctx, call{
		resource: formulasResource,
		method:   http.MethodPost,
		path:     formulasPath,
		body:     wire.FormulaToWire(formula),
	})
	return err
}

// ReplaceFormula overwrites the formula stored under name with formula.
func (c *Client) ReplaceFormula(ctx context.Context, name string, formula models.Formula, opts ...ReplaceOption) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyKey
	}

	req := call{
		resource: formulasResource,
		method:   http.MethodPut,
		path:     keyPath(formulasPath, name),
		body:     wire.FormulaToWire(formula),
	}
	for _, opt := range opts {
		opt(&req)
	}

	_, err := c.do(ctx, req)
	return err
}

// DeleteFormula removes the formula stored under name.
func (c *Client) DeleteFormula(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyKey
	}
	_, err := c.do(ctx, call{resource: formulasResource, method: http.MethodDelete, path: keyPath(formulasPath, name)})
	return err
}
