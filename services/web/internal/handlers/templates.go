package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/example/animelist/services/web/internal/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTitles = map[pages.Route]string{
	pages.RouteHome:      "Home",
	pages.RouteGenerator: "Recommendations",
	pages.RouteMyList:    "My List",
}

type pageData struct {
	Title string
	Page  string
	Alert string
	View  pages.View
}

// Templates holds one parsed layout per page.
type Templates struct {
	byRoute map[pages.Route]*template.Template
}

func LoadTemplates() (*Templates, error) {
	t := &Templates{byRoute: make(map[pages.Route]*template.Template, len(pageTitles))}
	for route := range pageTitles {
		tpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+route.String()+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", route, err)
		}
		t.byRoute[route] = tpl
	}
	return t, nil
}

func (t *Templates) Execute(w io.Writer, v pages.View, alert string) error {
	tpl, ok := t.byRoute[v.Route]
	if !ok {
		return fmt.Errorf("no template for route %s", v.Route)
	}
	return tpl.ExecuteTemplate(w, "layout", pageData{
		Title: pageTitles[v.Route],
		Page:  v.Route.String(),
		Alert: alert,
		View:  v,
	})
}
