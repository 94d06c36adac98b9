package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newIngredientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Edit the ingredient list of a formula",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add FORMULA NAME QUANTITY [UNIT]",
			Short: "Append an ingredient",
			Args:  cobra.RangeArgs(3, 4),
			RunE: func(cmd *cobra.Command, args []string) error {
				ing, err := parseIngredient(args[1], args[2], optionalArg(args, 3))
				if err != nil {
					return err
				}
				if err := a.editor.AddIngredient(cmd.Context(), args[0], ing); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", ing.Name, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "update FORMULA INDEX NAME QUANTITY [UNIT]",
			Short: "Replace the ingredient at INDEX",
			Args:  cobra.RangeArgs(4, 5),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIndex(args[1])
				if err != nil {
					return err
				}
				ing, err := parseIngredient(args[2], args[3], optionalArg(args, 4))
				if err != nil {
					return err
				}
				if err := a.editor.UpdateIngredient(cmd.Context(), args[0], index, ing); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated ingredient %d of %s\n", index, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete FORMULA INDEX",
			Short: "Remove the ingredient at INDEX",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIndex(args[1])
				if err != nil {
					return err
				}
				if err := a.editor.DeleteIngredient(cmd.Context(), args[0], index); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted ingredient %d of %s\n", index, args[0])
				return nil
			},
		},
	)
	return cmd
}

func parseIndex(value string) (int, error) {
	index, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a whole number", value)
	}
	return index, nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
