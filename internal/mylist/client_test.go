package mylist

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/status"
)

type recorded struct {
	method string
	rid    string
	path   string
	query  string
	body   map[string]any
}

func fakeBackend(t *testing.T, code int, resp string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.rid = r.Header.Get(httpserver.RequestIDHeader)
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/"}), rec
}

func TestList_FilterQuery(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusOK, `[{"_id":"e1","jikanId":5,"title":"A","status":"COMPLETED","currentEpisode":0,"updatedAt":"2024-01-02T03:04:05Z"}]`)
	got, err := c.List(context.Background(), status.Completed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/mylist" || rec.query != "status=COMPLETED" {
		t.Fatalf("unexpected request %+v", rec)
	}
	if len(got) != 1 || got[0].ID != "e1" || got[0].Status != status.Completed || got[0].JikanID != 5 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestList_NoFilterOmitsQuery(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusOK, `[]`)
	if _, err := c.List(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.query != "" {
		t.Fatalf("expected no query, got %q", rec.query)
	}
}

func TestList_FailureReturnsEmptySlice(t *testing.T) {
	c, _ := fakeBackend(t, http.StatusInternalServerError, `{"msg":"down"}`)
	got, err := c.List(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListedIDs(t *testing.T) {
	c, _ := fakeBackend(t, http.StatusOK, `[{"_id":"a","jikanId":1},{"_id":"b","jikanId":7}]`)
	ids, err := c.ListedIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 7 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestCreate_SendsCodeAndSurfacesMsg(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusConflict, `{"msg":"Already on list","code":"ALREADY_ON_LIST"}`)
	err := c.Create(context.Background(), AnimeRef{JikanID: 5, Title: "Five", Image: "i.jpg"}, status.LabelWatching)
	ae, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if ae.Status != http.StatusConflict || ae.Msg != "Already on list" {
		t.Fatalf("unexpected error %+v", ae)
	}
	if rec.method != http.MethodPost || rec.path != "/mylist" {
		t.Fatalf("unexpected request %+v", rec)
	}
	if rec.body["jikanId"] != float64(5) || rec.body["status"] != "WATCHING" || rec.body["title"] != "Five" || rec.body["image"] != "i.jpg" {
		t.Fatalf("unexpected body %v", rec.body)
	}
}

func TestCreate_FallbackMessage(t *testing.T) {
	c, _ := fakeBackend(t, http.StatusBadGateway, `gateway down`)
	err := c.Create(context.Background(), AnimeRef{JikanID: 1, Title: "x"}, "")
	ae, ok := AsAPIError(err)
	if !ok || ae.Msg != FallbackCreateMsg {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestUpdate_PutsStatusCode(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusOK, `{}`)
	if err := c.Update(context.Background(), "e 1", status.LabelPaused); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodPut || rec.path != "/mylist/e 1" || rec.body["status"] != "PAUSED" {
		t.Fatalf("unexpected request %+v", rec)
	}
}

func TestRemove(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusNoContent, ``)
	if err := c.Remove(context.Background(), "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/mylist/e1" {
		t.Fatalf("unexpected request %+v", rec)
	}
}

func TestRemove_NotFound(t *testing.T) {
	c, _ := fakeBackend(t, http.StatusNotFound, `{"msg":"List entry not found"}`)
	err := c.Remove(context.Background(), "nope")
	if ae, ok := AsAPIError(err); !ok || ae.Status != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	err := c.Update(context.Background(), "x", status.LabelDropped)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatal("transport failure must not be an APIError")
	}
}

func TestRequestIDForwarded(t *testing.T) {
	c, rec := fakeBackend(t, http.StatusOK, `[]`)
	ctx := httpserver.WithRequestID(context.Background(), "rid-7")
	if _, err := c.List(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.rid != "rid-7" {
		t.Fatalf("expected request id forwarded, got %q", rec.rid)
	}
}
