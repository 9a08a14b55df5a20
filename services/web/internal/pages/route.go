// Package pages holds the three page controllers (home ticker, recommendation
// generator, watch list) and the list actions they trigger. Controllers are
// stateless; each request builds its view from the gateways.
package pages

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/status"
)

// Route identifies a page.
type Route int

const (
	RouteHome Route = iota
	RouteGenerator
	RouteMyList
)

var routeNames = map[Route]string{
	RouteHome:      "home",
	RouteGenerator: "generator",
	RouteMyList:    "mylist",
}

func (r Route) String() string {
	if n, ok := routeNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Route(%d)", int(r))
}

// ParseRoute maps a page identity ("home", "generator", "mylist") to a Route.
func ParseRoute(s string) (Route, error) {
	for r, n := range routeNames {
		if n == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("pages: unknown route %q", s)
}

// Params carries the per-request page inputs.
type Params struct {
	GenreID int
	Filter  status.Label
}

// View is the rendered state of one page; exactly one field is set.
type View struct {
	Route     Route
	Home      *HomeView
	Generator *GeneratorView
	MyList    *MyListView
}

// Dispatcher owns one isolated controller per route.
type Dispatcher struct {
	home      *Home
	generator *Generator
	mylist    *MyList
}

func NewDispatcher(catalog jikan.Catalog, list mylist.Gateway, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		home:      &Home{Catalog: catalog, List: list, Log: log.With(zap.String("page", "home"))},
		generator: &Generator{Catalog: catalog, List: list, Log: log.With(zap.String("page", "generator"))},
		mylist:    &MyList{List: list, Log: log.With(zap.String("page", "mylist"))},
	}
}

// Render runs the controller selected by route.
func (d *Dispatcher) Render(ctx context.Context, route Route, p Params) (View, error) {
	switch route {
	case RouteHome:
		v := d.home.Render(ctx)
		return View{Route: route, Home: &v}, nil
	case RouteGenerator:
		v := d.generator.Render(ctx, p.GenreID)
		return View{Route: route, Generator: &v}, nil
	case RouteMyList:
		v := d.mylist.Render(ctx, p.Filter)
		return View{Route: route, MyList: &v}, nil
	default:
		return View{}, fmt.Errorf("pages: unknown route %s", route)
	}
}
