package pages

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/render"
)

const (
	// TickerSize is the number of distinct tiles in the ticker.
	TickerSize = 12

	MsgTickerUnavailable = "Unable to load ticker content."
)

type HomeView struct {
	Ticker template.HTML
	Tiles  int
	Status string
}

// Home builds the ticker of currently airing anime not yet on the list.
type Home struct {
	Catalog jikan.Catalog
	List    mylist.Gateway
	Log     *zap.Logger
}

func (h *Home) Render(ctx context.Context) HomeView {
	listed, err := h.List.ListedIDs(ctx)
	if err != nil {
		h.Log.Warn("listed ids unavailable", zap.Error(err))
	}

	items, err := h.Catalog.FetchSeasonalOrCatalog(ctx)
	if err != nil {
		h.Log.Warn("ticker fetch failed", zap.Error(err))
		return HomeView{Status: MsgTickerUnavailable}
	}

	cards := card.NormalizeAll(card.Take(card.ExcludeListed(items, listed), TickerSize))
	if len(cards) == 0 {
		return HomeView{Status: MsgTickerUnavailable}
	}
	return HomeView{
		// Ticker escapes every field it interpolates.
		Ticker: template.HTML(render.Ticker(cards)),
		Tiles:  len(cards) * 2,
	}
}
