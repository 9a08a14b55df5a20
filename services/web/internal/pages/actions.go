package pages

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/status"
	"github.com/example/animelist/services/web/internal/guard"
)

const (
	MsgInProgress   = "Request already in progress."
	MsgUpdateFailed = "Failed to update list entry."
	MsgRemoveFailed = "Failed to remove list entry."
	MsgInvalidCard  = "That anime could not be added."
	MyListPath      = "/mylist"
	alertParam      = "alert"
	filterParam     = "status"
)

// Outcome tells the HTTP layer where to send the browser next. Alert, when
// set, is shown as a blocking dialog on the target page.
type Outcome struct {
	Path  string
	Alert string
	OK    bool
}

// Location is Path with the alert appended as a query parameter.
func (o Outcome) Location() string {
	if o.Alert == "" {
		return o.Path
	}
	u, err := url.Parse(o.Path)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(alertParam, o.Alert)
	u.RawQuery = q.Encode()
	return u.String()
}

// Actions performs watch-list mutations. Each target may have at most one
// mutation in flight.
type Actions struct {
	List  mylist.Gateway
	Guard *guard.InFlight
	Log   *zap.Logger
}

func NewActions(list mylist.Gateway, g *guard.InFlight, log *zap.Logger) *Actions {
	if g == nil {
		g = guard.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Actions{List: list, Guard: g, Log: log}
}

// AddToList creates an entry for c. On success the origin page is reloaded;
// on rejection the backend's message (or the fallback) is shown there.
func (a *Actions) AddToList(ctx context.Context, from string, c card.DisplayCard, label status.Label) Outcome {
	origin := SafeOrigin(from)
	if c.MalID <= 0 {
		return Outcome{Path: origin, Alert: MsgInvalidCard}
	}

	release, ok := a.Guard.TryAcquire(guard.CreateKey(c.MalID))
	if !ok {
		return Outcome{Path: origin, Alert: MsgInProgress}
	}
	defer release()

	err := a.List.Create(ctx, mylist.AnimeRef{JikanID: c.MalID, Title: c.Title, Image: c.Image}, label)
	if err != nil {
		a.Log.Warn("add to list failed", zap.Int("jikan_id", c.MalID), zap.Error(err))
		msg := mylist.FallbackCreateMsg
		if ae, ok := mylist.AsAPIError(err); ok && ae.Msg != "" {
			msg = ae.Msg
		}
		return Outcome{Path: origin, Alert: msg}
	}
	return Outcome{Path: origin, OK: true}
}

// UpdateStatus changes an entry's status. The list reloads with the active
// filter only when the backend confirmed the change.
func (a *Actions) UpdateStatus(ctx context.Context, id string, label, filter status.Label) Outcome {
	page := MyListPathFor(filter)
	release, ok := a.Guard.TryAcquire(guard.UpdateKey(id))
	if !ok {
		return Outcome{Path: page, Alert: MsgInProgress}
	}
	defer release()

	if err := a.List.Update(ctx, id, label); err != nil {
		a.Log.Warn("update list entry failed", zap.String("entry_id", id), zap.Error(err))
		return Outcome{Path: page, Alert: MsgUpdateFailed}
	}
	return Outcome{Path: page, OK: true}
}

// Remove deletes an entry and reloads the unfiltered list. On failure the
// current filter is kept.
func (a *Actions) Remove(ctx context.Context, id string, filter status.Label) Outcome {
	release, ok := a.Guard.TryAcquire(guard.DeleteKey(id))
	if !ok {
		return Outcome{Path: MyListPathFor(filter), Alert: MsgInProgress}
	}
	defer release()

	if err := a.List.Remove(ctx, id); err != nil {
		a.Log.Warn("remove list entry failed", zap.String("entry_id", id), zap.Error(err))
		return Outcome{Path: MyListPathFor(filter), Alert: MsgRemoveFailed}
	}
	return Outcome{Path: MyListPath, OK: true}
}

// MyListPathFor is the watch-list URL with filter applied.
func MyListPathFor(filter status.Label) string {
	if filter == "" || filter == status.LabelAll {
		return MyListPath
	}
	return MyListPath + "?" + url.Values{filterParam: {string(filter)}}.Encode()
}

// SafeOrigin keeps redirects on this site's own pages.
func SafeOrigin(from string) string {
	u, err := url.Parse(strings.TrimSpace(from))
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	switch u.Path {
	case "/", "/generator", MyListPath:
	default:
		return "/"
	}
	out := &url.URL{Path: u.Path}
	if u.Path == "/generator" {
		if g := u.Query().Get("genre"); g != "" {
			out.RawQuery = url.Values{"genre": {g}}.Encode()
		}
	}
	return out.String()
}
