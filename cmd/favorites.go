package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/parkctl/filter"
)

var (
	favoritePlate string
	favoriteName  string
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favorite", "fav"},
	Short:   "Manage saved license plates",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved license plates",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a license plate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		favorite, err := client.CreateFavorite(cmd.Context(), favoritePlate, nameFlag(cmd))
		if err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		fmt.Printf("✓ Saved %s as %s\n", favorite.LicensePlate, favorite.DisplayName())
		return nil
	},
}

var favoritesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rename a saved license plate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		favorite, err := client.UpdateFavorite(cmd.Context(), favoritePlate, nameFlag(cmd))
		if err != nil {
			return fmt.Errorf("failed to update favorite: %w", err)
		}
		fmt.Printf("✓ Updated %s to %s\n", favorite.LicensePlate, favorite.DisplayName())
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a saved license plate",
	Long: `Remove a saved license plate. The API matches on plate and name, so the
current name is looked up first unless --name is given.`,
	Args: cobra.NoArgs,
	RunE: runFavoritesRemove,
}

func init() {
	favoritesListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	favoritesListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	favoritesListCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	for _, c := range []*cobra.Command{favoritesAddCmd, favoritesUpdateCmd, favoritesRemoveCmd} {
		c.Flags().StringVar(&favoritePlate, "plate", "", "license plate")
		c.Flags().StringVar(&favoriteName, "name", "", "display name")
		_ = c.MarkFlagRequired("plate")
		favoritesCmd.AddCommand(c)
	}
	favoritesCmd.AddCommand(favoritesListCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	program, err := getFilterProgram()
	if err != nil {
		return err
	}

	favorites, err := client.ListFavorites(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list favorites: %w", err)
	}

	if program != nil {
		favorites, err = filter.Favorites(program, favorites)
		if err != nil {
			return err
		}
	}

	if len(favorites) == 0 {
		fmt.Println("No saved license plates.")
		return nil
	}

	fmt.Printf("Found %d saved plates:\n", len(favorites))
	fmt.Println(strings.Repeat("-", 60))
	for _, f := range favorites {
		if f.Name != nil && *f.Name != "" {
			fmt.Printf("• %s (%s)\n", f.LicensePlate, *f.Name)
			continue
		}
		fmt.Printf("• %s\n", f.LicensePlate)
	}
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	name := nameFlag(cmd)
	if name == nil {
		favorites, err := client.ListFavorites(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		found := false
		for _, f := range favorites {
			if f.LicensePlate == favoritePlate {
				name, found = f.Name, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no saved plate %s", favoritePlate)
		}
	}

	if err := client.DeleteFavorite(cmd.Context(), favoritePlate, name); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	fmt.Printf("✓ Removed %s\n", favoritePlate)
	return nil
}

// nameFlag returns --name, or nil when it was not given
func nameFlag(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("name") {
		return nil
	}
	name := favoriteName
	return &name
}
