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
	stockPath     = "/stock"
	stockResource = "stock"
)

// ListColors returns every stock entry in server order.
func (c *Client) ListColors(ctx context.Context) ([]models.Color, error) {
	var payload []wire.ColorPayload
	if _, err := c.do(ctx, call{resource: stockResource, method: http.MethodGet, path: stockPath, out: &payload}); err != nil {
		return nil, err
	}

	colors := make([]models.Color, 0, len(payload))
	for _, p := range payload {
		colors = append(colors, wire.ColorFromWire(p))
	}
	return colors, nil
}

// GetColor fetches a single stock entry by its exact name. A body without a
// named entry matches ErrDecode.
func (c *Client) GetColor(ctx context.Context, name string) (models.Color, error) {
	if strings.TrimSpace(name) == "" {
		return models.Color{}, ErrEmptyKey
	}

	var payload *wire.ColorPayload
	path := keyPath(stockPath, name)
	if _, err := c.do(ctx, call{resource: stockResource, method: http.MethodGet, path: path, out: &payload}); err != nil {
		return models.Color{}, err
	}
	if payload == nil || strings.TrimSpace(payload.Name) == "" {
		return models.Color{}, fmt.Errorf("api: GET %s: %w: response has no stock name", path, ErrDecode)
	}
	return wire.ColorFromWire(*payload), nil
}

// CreateColor adds a stock entry. The created resource is not returned.
func (c *Client) CreateColor(ctx context.Context, color models.Color) error {
	_, err := c.do(ctx, call{
		resource: stockResource,
		method:   http.MethodPost,
		path:     stockPath,
		body:     wire.ColorToWire(color),
	})
	return err
}

// ReplaceColor overwrites the stock entry keyed by color.Name.
func (c *Client) ReplaceColor(ctx context.Context, color models.Color) error {
	if strings.TrimSpace(color.Name) == "" {
		return ErrEmptyKey
	}
	_, err := c.do(ctx, call{
		resource: stockResource,
		method:   http.MethodPut,
		path:     keyPath(stockPath, color.Name),
		body:     wire.ColorToWire(color),
	})
	return err
}

// DeleteColor removes the stock entry with the given name.
func (c *Client) DeleteColor(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyKey
	}
	_, err := c.do(ctx, call{resource: stockResource, method: http.MethodDelete, path: keyPath(stockPath, name)})
	return err
}
