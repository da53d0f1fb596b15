package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"marketapi/internal/service"
)

var defaultCategories = []service.CategoryInput{
	{Slug: "food-drink", Name: "Food & Drink", Icon: "utensils", SortOrder: 10},
	{Slug: "outdoors", Name: "Outdoors", Icon: "mountain", SortOrder: 20},
	{Slug: "arts-culture", Name: "Arts & Culture", Icon: "palette", SortOrder: 30},
	{Slug: "water", Name: "Water Activities", Icon: "waves", SortOrder: 40},
	{Slug: "wellness", Name: "Wellness", Icon: "leaf", SortOrder: 50},
	{Slug: "tours", Name: "Tours", Icon: "map", SortOrder: 60},
	{Slug: "workshops", Name: "Workshops", Icon: "hammer", SortOrder: 70},
	{Slug: "nightlife", Name: "Nightlife", Icon: "moon", SortOrder: 80},
}

func newCategoriesCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage experience categories",
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories; existing slugs are left alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.OpenApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			created := 0
			for _, in := range defaultCategories {
				_, err := a.Services.Categories.Create(cmd.Context(), in)
				switch {
				case errors.Is(err, service.ErrConflict):
					continue
				case err != nil:
					return fmt.Errorf("seed %s: %w", in.Slug, err)
				}
				created++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d categories\n", created, len(defaultCategories))
			return nil
		},
	}

	cmd.AddCommand(seed)
	return cmd
}
