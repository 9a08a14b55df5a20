package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/animelist/internal/card"
)

const tickerSize = 12

func newTickerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ticker",
		Short: "Show currently airing anime that are not on the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			listed, _ := app.List.ListedIDs(ctx)
			items, err := app.Catalog.FetchSeasonalOrCatalog(ctx)
			if err != nil {
				return err
			}
			cards := card.NormalizeAll(card.Take(card.ExcludeListed(items, listed), tickerSize))
			printCards(cmd.OutOrStdout(), cards)
			return nil
		},
	}
}

func newGenresCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List selectable genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genres, err := app.Catalog.FetchGenres(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range genres {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", g.MalID, g.Name)
			}
			return nil
		},
	}
}

func newRecommendCmd(app *App) *cobra.Command {
	var genre int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show popular G-rated anime, optionally by genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			listed, _ := app.List.ListedIDs(ctx)
			items, err := app.Catalog.FetchFiltered(ctx, "", genre)
			if err != nil {
				return err
			}
			cards := card.NormalizeAll(card.ExcludeListed(items, listed))
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results found for that filter.")
				return nil
			}
			printCards(cmd.OutOrStdout(), cards)
			return nil
		},
	}
	cmd.Flags().IntVar(&genre, "genre", 0, "Jikan genre id (0 for any)")
	return cmd
}

func printCards(w io.Writer, cards []card.DisplayCard) {
	for _, c := range cards {
		fmt.Fprintf(w, "%d\t%s\n", c.MalID, c.Title)
	}
}
