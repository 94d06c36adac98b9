package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rubberstock/internal/api"
	applog "rubberstock/internal/log"
	"rubberstock/models"
)

func newFormulasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formulas",
		Short: "List and edit color formulas",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List formulas",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				formulas, err := a.client.ListFormulas(cmd.Context())
				if err != nil {
					// The list stays usable when the server is down; it is shown empty.
					applog.Warn(cmd.Context(), "formulas unavailable", "error", err)
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: formulas could not be loaded:", err)
					formulas = nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tINGREDIENTS")
				for _, f := range formulas {
					fmt.Fprintf(w, "%s\t%s\t%d\n", f.ID, f.Name, len(f.Ingredients))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "show FORMULA",
			Short: "Show the ingredients of a formula by name or id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				formula, err := a.client.GetFormula(cmd.Context(), args[0])
				if errors.Is(err, api.ErrNotFound) {
					formula, err = a.client.FormulaByID(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				printFormula(cmd, formula)
				return nil
			},
		},
		newCreateFormulaCmd(a),
		&cobra.Command{
			Use:   "delete FORMULA",
			Short: "Delete a formula",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteFormula(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted formula %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newCreateFormulaCmd(a *app) *cobra.Command {
	var values []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a formula",
		Example: "  stockctl formulas create \"Azul Marino\" \\\n" +
			"    --ingredient Estabilizante:500:gr --ingredient Espumante:650",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formula := models.Formula{ID: models.Slug(args[0]), Name: strings.TrimSpace(args[0])}
			for _, value := range values {
				ing, err := parseIngredientFlag(value)
				if err != nil {
					return err
				}
				formula.Ingredients = append(formula.Ingredients, ing)
			}
			if err := models.Validate(formula); err != nil {
				return err
			}
			if err := a.client.CreateFormula(cmd.Context(), formula); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created formula %s with %d ingredients\n", formula.Name, len(formula.Ingredients))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&values, "ingredient", nil, "ingredient as NAME:QUANTITY[:UNIT], repeatable")
	return cmd
}

// parseIngredientFlag reads NAME:QUANTITY[:UNIT]. A missing unit is grams.
func parseIngredientFlag(value string) (models.Ingredient, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return models.Ingredient{}, fmt.Errorf("ingredient %q: want NAME:QUANTITY[:UNIT]", value)
	}
	unit := ""
	if len(parts) == 3 {
		unit = parts[2]
	}
	return parseIngredient(parts[0], parts[1], unit)
}

func parseIngredient(name, quantity, unit string) (models.Ingredient, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(quantity), 64)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("quantity %q is not a number", quantity)
	}
	parsed, ok := models.LookupUnit(unit)
	if !ok {
		return models.Ingredient{}, fmt.Errorf("unit %q: want gr, kg or L", unit)
	}
	return models.Ingredient{
		Name:     strings.TrimSpace(name),
		Quantity: value,
		Unit:     parsed,
	}, nil
}

func printFormula(cmd *cobra.Command, formula models.Formula) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", formula.Name, formula.ID)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tINGREDIENT\tQUANTITY\tUNIT")
	for i, ing := range formula.Ingredients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, ing.Name, strconv.FormatFloat(ing.Quantity, 'f', -1, 64), ing.Unit)
	}
	w.Flush()
}
