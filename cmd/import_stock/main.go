// Command import_stock loads stock entries or formulas from a CSV file into
// the stock API. Existing records with the same name are replaced.
//
// A stock file has the header "Color,Quantity". A formula file has the header
// "Formula,Ingredient,Quantity,Unit" with one row per ingredient; rows of the
// same formula keep their file order.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rubberstock/internal/api"
	"rubberstock/internal/config"
	applog "rubberstock/internal/log"
	"rubberstock/models"
)

type importClient interface {
	CreateColor(ctx context.Context, color models.Color) error
	ReplaceColor(ctx context.Context, color models.Color) error
	CreateFormula(ctx context.Context, formula models.Formula) error
	ReplaceFormula(ctx context.Context, name string, formula models.Formula, opts ...api.ReplaceOption) error
}

func main() {
	csvPath := "stock.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string, out io.Writer) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	header, records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	var imported int
	var kind string
	switch {
	case hasColumns(header, "Formula", "Ingredient", "Quantity"):
		kind = "formulas"
		imported, err = importFormulas(ctx, client, records)
	case hasColumns(header, "Color", "Quantity"):
		kind = "colors"
		imported, err = importColors(ctx, client, records)
	default:
		return fmt.Errorf("unrecognised header %v", header)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d %s from %s\n", imported, kind, filepath.Base(csvPath))
	return nil
}

func importColors(ctx context.Context, client importClient, records []map[string]string) (int, error) {
	imported := 0
	for idx, record := range records {
		name := normalizeName(record["color"])
		quantity, err := strconv.Atoi(strings.TrimSpace(record["quantity"]))
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): quantity %q is not a whole number", idx+1, name, record["quantity"])
		}
		color := models.NewColor(name, quantity)
		if err := models.Validate(color); err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+1, name, err)
		}

		err = client.CreateColor(ctx, color)
		if errors.Is(err, api.ErrConflict) {
			applog.Debug(ctx, "color exists, replacing", "name", name)
			err = client.ReplaceColor(ctx, color)
		}
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+1, name, err)
		}
		imported++
	}
	return imported, nil
}

func importFormulas(ctx context.Context, client importClient, records []map[string]string) (int, error) {
	formulas, err := groupFormulas(records)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, formula := range formulas {
		err := client.CreateFormula(ctx, formula)
		if errors.Is(err, api.ErrConflict) {
			applog.Debug(ctx, "formula exists, replacing", "name", formula.Name)
			err = client.ReplaceFormula(ctx, formula.Name, formula)
		}
		if err != nil {
			return imported, fmt.Errorf("formula %s: %w", formula.Name, err)
		}
		imported++
	}
	return imported, nil
}

// groupFormulas folds ingredient rows into formulas in order of first
// appearance. Formula names match case-insensitively.
func groupFormulas(records []map[string]string) ([]models.Formula, error) {
	var formulas []models.Formula
	index := map[string]int{}

	for idx, record := range records {
		name := normalizeName(record["formula"])
		quantity, err := strconv.ParseFloat(strings.TrimSpace(record["quantity"]), 64)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): quantity %q is not a number", idx+1, name, record["quantity"])
		}
		unit, ok := models.LookupUnit(record["unit"])
		if !ok {
			return nil, fmt.Errorf("record %d (%s): unknown unit %q", idx+1, name, record["unit"])
		}
		ingredient := models.Ingredient{
			Name:     normalizeName(record["ingredient"]),
			Quantity: quantity,
			Unit:     unit,
		}
		if err := models.Validate(ingredient); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", idx+1, name, err)
		}

		key := models.Slug(name)
		pos, ok := index[key]
		if !ok {
			formulas = append(formulas, models.Formula{ID: key, Name: name})
			pos = len(formulas) - 1
			index[key] = pos
		}
		formulas[pos].Ingredients = append(formulas[pos].Ingredients, ingredient)
	}

	for _, formula := range formulas {
		if err := models.Validate(formula); err != nil {
			return nil, fmt.Errorf("formula %s: %w", formula.Name, err)
		}
	}
	return formulas, nil
}

func readCSV(path string) ([]string, []map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(key))
	}
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return header, records, nil
}

func hasColumns(header []string, names ...string) bool {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.ToLower(h)] = struct{}{}
	}
	for _, name := range names {
		if _, ok := present[strings.ToLower(name)]; !ok {
			return false
		}
	}
	return true
}

func normalizeName(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
