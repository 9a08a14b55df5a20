package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/status"
	"github.com/example/animelist/services/web/internal/pages"
)

type Deps struct {
	Pages     *pages.Dispatcher
	Actions   *pages.Actions
	Templates *Templates
	Log       *zap.Logger
}

// Routes registers the three pages and the watch-list form actions.
func Routes(r chi.Router, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r.Get("/", Page(d, pages.RouteHome))
	r.Get("/generator", Page(d, pages.RouteGenerator))
	r.Get("/mylist", Page(d, pages.RouteMyList))

	r.Post("/mylist", AddToList(d))
	r.Post("/mylist/{id}/status", UpdateStatus(d))
	r.Post("/mylist/{id}/delete", RemoveEntry(d))
}

// Page handles GET for one route. Query parameters: genre (generator),
// status (mylist filter label), alert (dialog text carried by redirects).
func Page(d Deps, route pages.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		q := r.URL.Query()

		view, err := d.Pages.Render(r.Context(), route, pages.Params{
			GenreID: genreParam(q.Get("genre")),
			Filter:  filterParam(q.Get("status")),
		})
		if err != nil {
			d.Log.Error("render page", zap.String("page", route.String()), zap.String("request_id", rid), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := d.Templates.Execute(&buf, view, q.Get("alert")); err != nil {
			d.Log.Error("execute template", zap.String("page", route.String()), zap.String("request_id", rid), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// AddToList handles POST /mylist with form fields card (DisplayCard JSON),
// status (label) and from (origin page).
func AddToList(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirect(w, r, pages.Outcome{Path: "/", Alert: pages.MsgInvalidCard})
			return
		}
		from := r.PostForm.Get("from")

		var c card.DisplayCard
		if err := json.Unmarshal([]byte(r.PostForm.Get("card")), &c); err != nil {
			d.Log.Warn("invalid card payload", zap.String("request_id", httpserver.RequestIDFromContext(r.Context())), zap.Error(err))
			redirect(w, r, pages.Outcome{Path: pages.SafeOrigin(from), Alert: pages.MsgInvalidCard})
			return
		}
		label := status.Label(r.PostForm.Get("status"))
		redirect(w, r, d.Actions.AddToList(r.Context(), from, c, label))
	}
}

// UpdateStatus handles POST /mylist/{id}/status with form fields status and
// filter. A missing or unknown status is refused rather than defaulted.
func UpdateStatus(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			d.Log.Warn("invalid status form", zap.String("request_id", httpserver.RequestIDFromContext(r.Context())), zap.Error(err))
			redirect(w, r, pages.Outcome{Path: pages.MyListPath, Alert: pages.MsgUpdateFailed})
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		filter := filterParam(r.PostForm.Get("filter"))
		label := filterParam(r.PostForm.Get("status"))
		if label == "" {
			redirect(w, r, pages.Outcome{Path: pages.MyListPathFor(filter), Alert: pages.MsgUpdateFailed})
			return
		}
		redirect(w, r, d.Actions.UpdateStatus(r.Context(), id, label, filter))
	}
}

// RemoveEntry handles POST /mylist/{id}/delete with form field filter.
func RemoveEntry(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			d.Log.Warn("invalid remove form", zap.String("request_id", httpserver.RequestIDFromContext(r.Context())), zap.Error(err))
			redirect(w, r, pages.Outcome{Path: pages.MyListPath, Alert: pages.MsgRemoveFailed})
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		redirect(w, r, d.Actions.Remove(r.Context(), id, filterParam(r.PostForm.Get("filter"))))
	}
}

func redirect(w http.ResponseWriter, r *http.Request, out pages.Outcome) {
	http.Redirect(w, r, out.Location(), http.StatusSeeOther)
}

func genreParam(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// filterParam accepts one of the six labels; anything else yields "".
func filterParam(raw string) status.Label {
	l := status.Label(strings.TrimSpace(raw))
	for _, known := range status.Labels() {
		if l == known {
			return l
		}
	}
	return ""
}
