package pages

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/render"
)

const (
	MsgNetworkError = "Oops! Network or API error."
	MsgNoResults    = "No results found for that filter."
)

// APIErrorMessage is the status line for a non-2xx catalog answer.
func APIErrorMessage(code int) string {
	return fmt.Sprintf("Oops! API error: %d", code)
}

type GeneratorView struct {
	Genres        []jikan.Genre
	SelectedGenre int
	Grid          template.HTML
	Cards         int
	Status        string
}

// Generator builds the filtered recommendation grid.
type Generator struct {
	Catalog jikan.Catalog
	List    mylist.Gateway
	Log     *zap.Logger
}

func (g *Generator) Render(ctx context.Context, genreID int) GeneratorView {
	v := GeneratorView{SelectedGenre: genreID, Genres: []jikan.Genre{}}

	genres, err := g.Catalog.FetchGenres(ctx)
	if err != nil {
		g.Log.Warn("failed to load genres", zap.Error(err))
	} else {
		v.Genres = genres
	}

	listed, err := g.List.ListedIDs(ctx)
	if err != nil {
		g.Log.Warn("listed ids unavailable", zap.Error(err))
	}

	items, err := g.Catalog.FetchFiltered(ctx, "", genreID)
	if err != nil {
		if se, ok := jikan.AsStatusError(err); ok {
			v.Status = APIErrorMessage(se.Code)
		} else {
			v.Status = MsgNetworkError
		}
		g.Log.Warn("recommendations fetch failed", zap.Int("genre", genreID), zap.Error(err))
		return v
	}

	cards := card.NormalizeAll(card.ExcludeListed(items, listed))
	if len(cards) == 0 {
		v.Status = MsgNoResults
		return v
	}
	v.Grid = template.HTML(render.Grid(cards, GeneratorPath(genreID)))
	v.Cards = len(cards)
	return v
}

// GeneratorPath is the generator URL for genreID (0 means any genre).
func GeneratorPath(genreID int) string {
	if genreID <= 0 {
		return render.FromGenerator
	}
	return render.FromGenerator + "?" + url.Values{"genre": {strconv.Itoa(genreID)}}.Encode()
}
