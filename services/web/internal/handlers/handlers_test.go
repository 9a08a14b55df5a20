package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/status"
	"github.com/example/animelist/services/web/internal/pages"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	items  []card.RawItem
	genres []jikan.Genre
	err    error
}

func (f *fakeCatalog) FetchSeasonalOrCatalog(context.Context) ([]card.RawItem, error) {
	return f.items, f.err
}

func (f *fakeCatalog) FetchFiltered(context.Context, string, int) ([]card.RawItem, error) {
	return f.items, f.err
}

func (f *fakeCatalog) FetchGenres(context.Context) ([]jikan.Genre, error) {
	return f.genres, nil
}

type fakeList struct {
	mu        sync.Mutex
	entries   []mylist.Entry
	createErr error
	updateErr error
	removeErr error

	queried []status.Code
	created []mylist.AnimeRef
	labels  []status.Label
	updated []string
	removed []string
}

func (f *fakeList) List(_ context.Context, code status.Code) ([]mylist.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, code)
	out := []mylist.Entry{}
	for _, e := range f.entries {
		if code == "" || e.Status == code {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeList) ListedIDs(ctx context.Context) ([]int, error) {
	entries, _ := f.List(ctx, "")
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.JikanID)
	}
	return ids, nil
}

func (f *fakeList) Create(_ context.Context, ref mylist.AnimeRef, label status.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ref)
	f.labels = append(f.labels, label)
	return f.createErr
}

func (f *fakeList) Update(_ context.Context, id string, label status.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, id+"="+string(label))
	return f.updateErr
}

func (f *fakeList) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return f.removeErr
}

func newTestRouter(t *testing.T, cat jikan.Catalog, list mylist.Gateway) http.Handler {
	t.Helper()
	tpl, err := LoadTemplates()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	Routes(r, Deps{
		Pages:     pages.NewDispatcher(cat, list, nil),
		Actions:   pages.NewActions(list, nil, nil),
		Templates: tpl,
	})
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func items(n int) []card.RawItem {
	out := make([]card.RawItem, n)
	for i := range out {
		out[i] = card.RawItem{MalID: i + 1, Title: "Show"}
	}
	return out
}

// ─── pages ────────────────────────────────────────────────────────────────────

func TestHome_RendersDoubledTicker(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{items: items(12)}, &fakeList{})
	rr := get(h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rr.Body.String()
	if n := strings.Count(body, `<div class="card" data-id=`); n != 24 {
		t.Fatalf("expected 24 tiles, got %d", n)
	}
	if strings.Contains(body, `class="alert"`) {
		t.Fatal("no alert expected")
	}
}

func TestHome_TickerUnavailable(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{err: jikan.ErrNoData}, &fakeList{})
	body := get(h, "/").Body.String()
	if !strings.Contains(body, "Unable to load ticker content.") {
		t.Fatalf("expected ticker status, got %s", body)
	}
}

func TestGenerator_RendersGenresAndGrid(t *testing.T) {
	cat := &fakeCatalog{items: items(3), genres: []jikan.Genre{{MalID: 1, Name: "Action"}, {MalID: 4, Name: "Comedy"}}}
	body := get(newTestRouter(t, cat, &fakeList{}), "/generator?genre=4").Body.String()
	if !strings.Contains(body, `<option value="4" selected>Comedy</option>`) {
		t.Fatalf("expected selected genre option, got %s", body)
	}
	if strings.Count(body, `action="/mylist"`) != 3 {
		t.Fatal("expected one add form per card")
	}
}

func TestMyList_FilterQueriesByCode(t *testing.T) {
	list := &fakeList{entries: []mylist.Entry{{ID: "a", JikanID: 1, Title: "A", Status: status.Completed}}}
	h := newTestRouter(t, &fakeCatalog{}, list)

	body := get(h, "/mylist?status=Completed").Body.String()
	if len(list.queried) != 1 || list.queried[0] != status.Completed {
		t.Fatalf("expected COMPLETED query, got %v", list.queried)
	}
	if !strings.Contains(body, `<option value="Completed" selected>`) {
		t.Fatal("expected filter to stay selected")
	}

	get(h, "/mylist?status=bogus")
	if list.queried[1] != "" {
		t.Fatalf("unknown filter must be unfiltered, got %q", list.queried[1])
	}
}

func TestPage_RendersAlertDialog(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{}, &fakeList{})
	body := get(h, "/mylist?alert=Already+on+list").Body.String()
	if !strings.Contains(body, `<dialog open class="alert">`) || !strings.Contains(body, "Already on list") {
		t.Fatalf("expected alert dialog, got %s", body)
	}

	body = get(h, "/?alert=%3Cscript%3E").Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatal("alert text must be escaped")
	}
}

// ─── actions ─────────────────────────────────────────────────────────────────

func TestAddToList_RedirectsToOrigin(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)

	rr := postForm(h, "/mylist", url.Values{
		"card":   {`{"id":"5","mal_id":5,"title":"Five","image":"5.jpg"}`},
		"status": {"Want to Watch"},
		"from":   {"/generator?genre=2"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/generator?genre=2" {
		t.Fatalf("unexpected location %q", loc)
	}
	if len(list.created) != 1 || list.created[0].JikanID != 5 || list.labels[0] != status.LabelWantToWatch {
		t.Fatalf("unexpected create calls %+v %v", list.created, list.labels)
	}
}

func TestAddToList_DuplicateAlert(t *testing.T) {
	list := &fakeList{createErr: &mylist.APIError{Status: http.StatusConflict, Msg: "Already on list"}}
	h := newTestRouter(t, &fakeCatalog{}, list)

	rr := postForm(h, "/mylist", url.Values{"card": {`{"mal_id":5,"title":"Five"}`}, "status": {"Watching"}, "from": {"/"}})
	if loc := rr.Header().Get("Location"); loc != "/?alert=Already+on+list" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAddToList_MalformedCard(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)
	rr := postForm(h, "/mylist", url.Values{"card": {"{not json"}, "from": {"/"}})
	if rr.Code != http.StatusSeeOther || !strings.Contains(rr.Header().Get("Location"), "alert=") {
		t.Fatalf("expected alert redirect, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if len(list.created) != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestUpdateStatus_KeepsFilter(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)

	rr := postForm(h, "/mylist/e1/status", url.Values{"status": {"Dropped"}, "filter": {"Watching"}})
	if loc := rr.Header().Get("Location"); loc != "/mylist?status=Watching" {
		t.Fatalf("unexpected location %q", loc)
	}
	if len(list.updated) != 1 || list.updated[0] != "e1=Dropped" {
		t.Fatalf("unexpected update calls %v", list.updated)
	}

	list.updateErr = errors.New("down")
	rr = postForm(h, "/mylist/e1/status", url.Values{"status": {"Dropped"}, "filter": {"Watching"}})
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "alert=Failed+to+update+list+entry.") {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestUpdateStatus_RejectsUnreadableForm(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)

	req := httptest.NewRequest(http.MethodPost, "/mylist/e1/status", strings.NewReader("status=%zz&filter=Watching"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/mylist?alert=Failed+to+update+list+entry." {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = postForm(h, "/mylist/e1/status", url.Values{"filter": {"Watching"}})
	if loc := rr.Header().Get("Location"); loc != "/mylist?alert=Failed+to+update+list+entry.&status=Watching" {
		t.Fatalf("unexpected location %q", loc)
	}
	if len(list.updated) != 0 {
		t.Fatalf("entry must not be updated without a valid status, got %v", list.updated)
	}
}

func TestRemoveEntry_RejectsUnreadableForm(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)

	req := httptest.NewRequest(http.MethodPost, "/mylist/e1/delete", strings.NewReader("filter=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Location") != "/mylist?alert=Failed+to+remove+list+entry." || len(list.removed) != 0 {
		t.Fatalf("unexpected response %q removed=%v", rr.Header().Get("Location"), list.removed)
	}
}

func TestRemoveEntry(t *testing.T) {
	list := &fakeList{}
	h := newTestRouter(t, &fakeCatalog{}, list)

	rr := postForm(h, "/mylist/e9/delete", url.Values{"filter": {"Paused"}})
	if loc := rr.Header().Get("Location"); loc != "/mylist" {
		t.Fatalf("expected unfiltered refresh, got %q", loc)
	}
	if len(list.removed) != 1 || list.removed[0] != "e9" {
		t.Fatalf("unexpected remove calls %v", list.removed)
	}

	list.removeErr = errors.New("down")
	rr = postForm(h, "/mylist/e9/delete", url.Values{"filter": {"Paused"}})
	if loc := rr.Header().Get("Location"); loc != "/mylist?alert=Failed+to+remove+list+entry.&status=Paused" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestLoadTemplates_AllRoutes(t *testing.T) {
	tpl, err := LoadTemplates()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, r := range []pages.Route{pages.RouteHome, pages.RouteGenerator, pages.RouteMyList} {
		if _, ok := tpl.byRoute[r]; !ok {
			t.Fatalf("missing template for %s", r)
		}
	}
}
