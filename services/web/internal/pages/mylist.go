package pages

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/render"
	"github.com/example/animelist/internal/status"
)

type MyListView struct {
	Filter  status.Label
	Options template.HTML
	Grid    template.HTML
	Entries int
}

// MyList renders the watch list, optionally filtered by status label.
type MyList struct {
	List mylist.Gateway
	Log  *zap.Logger
}

func (m *MyList) Render(ctx context.Context, filter status.Label) MyListView {
	entries, err := m.List.List(ctx, status.FilterCode(filter))
	if err != nil {
		m.Log.Error("failed to fetch list from backend", zap.Error(err))
	}
	return MyListView{
		Filter:  filter,
		Options: template.HTML(render.StatusOptions(filter)),
		Grid:    template.HTML(render.List(entries, filter)),
		Entries: len(entries),
	}
}
