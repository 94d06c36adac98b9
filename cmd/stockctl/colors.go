package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rubberstock/internal/inventory"
	"rubberstock/internal/order"
	"rubberstock/models"
)

func newColorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "List and edit the color stock",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List colors in the saved display order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				colors, err := a.inventory.Load(cmd.Context())
				if err != nil {
					return err
				}
				printColors(cmd, colors)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add NAME QUANTITY",
			Short: "Add a color with its starting quantity",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q is not a whole number", args[1])
				}
				current, err := a.inventory.Load(cmd.Context())
				if err != nil {
					return err
				}
				color, err := a.inventory.Add(cmd.Context(), current, args[0], quantity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%d)\n", color.Name, color.Quantity)
				return nil
			},
		},
		&cobra.Command{
			Use:   "adjust COLOR DELTA",
			Short: "Add DELTA to the stock of COLOR, never going below zero",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				delta, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("delta %q is not a whole number", args[1])
				}
				current, err := a.inventory.Load(cmd.Context())
				if err != nil {
					return err
				}
				color, err := findColor(current, args[0])
				if err != nil {
					return err
				}
				updated, err := a.inventory.AdjustQuantity(cmd.Context(), color, delta)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d\n", updated.Name, color.Quantity, updated.Quantity)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete COLOR",
			Short: "Delete a color",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				current, err := a.inventory.Load(cmd.Context())
				if err != nil {
					return err
				}
				color, err := findColor(current, args[0])
				if err != nil {
					return err
				}
				if err := a.inventory.Delete(cmd.Context(), color.Name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", color.Name)
				return nil
			},
		},
		newReorderCmd(a),
	)
	return cmd
}

func newReorderCmd(a *app) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "reorder [COLOR...]",
		Short: "Change the display order",
		Long: "With colors given, they move to the front in that order and the rest keep\n" +
			"their relative order. With --from and --to, one position is moved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.inventory.Load(cmd.Context())
			if err != nil {
				return err
			}

			var next []models.Color
			switch {
			case len(args) > 0:
				ids := make([]string, 0, len(args))
				for _, arg := range args {
					color, err := findColor(current, arg)
					if err != nil {
						return err
					}
					ids = append(ids, color.ID)
				}
				next = order.Reconcile(current, ids)
			case cmd.Flags().Changed("from") && cmd.Flags().Changed("to"):
				next, err = inventory.Move(current, from, to)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("give the new order as arguments or use --from and --to")
			}

			if err := a.inventory.Reorder(cmd.Context(), next); err != nil {
				return err
			}
			printColors(cmd, next)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "position to move, starting at 0")
	cmd.Flags().IntVar(&to, "to", 0, "destination position, starting at 0")
	return cmd
}

// findColor matches arg against color ids first, then display names.
func findColor(colors []models.Color, arg string) (models.Color, error) {
	for _, c := range colors {
		if c.ID == arg {
			return c, nil
		}
	}
	for _, c := range colors {
		if models.SameName(c.Name, arg) {
			return c, nil
		}
	}
	return models.Color{}, fmt.Errorf("color %q not found", arg)
}

func printColors(cmd *cobra.Command, colors []models.Color) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tQUANTITY")
	for i, c := range colors {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i, c.ID, c.Name, c.Quantity)
	}
	w.Flush()
}
