// Package render produces the card markup for the ticker, the recommendation
// grid and the watch-list page. Every user-supplied string is escaped.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/status"
)

const (
	TileSynopsisLimit = 160
	TileGenreLimit    = 4
	GridSynopsisLimit = 140
	GridGenreLimit    = 3
)

// Origins the add-to-list forms redirect back to.
const (
	FromHome      = "/"
	FromGenerator = "/generator"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape escapes & < > " and ' for element content and attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Truncate keeps at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func pills(genres []string, limit int) string {
	var b strings.Builder
	for i, g := range genres {
		if i == limit {
			break
		}
		b.WriteString(`<span class="genre-pill">`)
		b.WriteString(Escape(g))
		b.WriteString(`</span>`)
	}
	return b.String()
}

// Tile renders a ticker tile.
func Tile(c card.DisplayCard) string {
	return cardMarkup(c, TileSynopsisLimit, TileGenreLimit, FromHome, true)
}

// GridCard renders a recommendation grid card that returns to the generator.
func GridCard(c card.DisplayCard) string {
	return GridCardFrom(c, FromGenerator)
}

// GridCardFrom renders a grid card whose add-to-list form redirects to from.
func GridCardFrom(c card.DisplayCard, from string) string {
	return cardMarkup(c, GridSynopsisLimit, GridGenreLimit, from, false)
}

func cardMarkup(c card.DisplayCard, synopsisLimit, genreLimit int, from string, withID bool) string {
	var b strings.Builder
	if withID {
		fmt.Fprintf(&b, `<div class="card" data-id="%s">`, Escape(c.ID))
	} else {
		b.WriteString(`<div class="card">`)
	}
	fmt.Fprintf(&b, `<img src="%s" alt="%s" loading="lazy">`, Escape(c.Image), Escape(c.Title))
	b.WriteString(`<div class="overlay">`)
	fmt.Fprintf(&b, `<div class="title">%s</div>`, Escape(c.Title))
	fmt.Fprintf(&b, `<div class="meta">%s</div>`, Escape(Truncate(c.Synopsis, synopsisLimit)))
	fmt.Fprintf(&b, `<div class="genres">%s</div>`, pills(c.Genres, genreLimit))
	b.WriteString(addForm(c, from))
	b.WriteString(`</div></div>`)
	return b.String()
}

func addForm(c card.DisplayCard, from string) string {
	payload, err := json.Marshal(c)
	if err != nil {
		payload = []byte("{}")
	}
	var b strings.Builder
	b.WriteString(`<form class="actions" method="post" action="/mylist">`)
	fmt.Fprintf(&b, `<input type="hidden" name="card" value="%s">`, Escape(string(payload)))
	fmt.Fprintf(&b, `<input type="hidden" name="from" value="%s">`, Escape(from))
	for _, l := range []status.Label{status.LabelWantToWatch, status.LabelNotInterested} {
		fmt.Fprintf(&b, `<button type="submit" name="status" value="%s">%s</button>`, Escape(string(l)), Escape(string(l)))
	}
	b.WriteString(`</form>`)
	return b.String()
}

// Ticker joins the tiles and repeats the sequence once so the loop is seamless.
func Ticker(cards []card.DisplayCard) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(Tile(c))
	}
	tiles := b.String()
	return tiles + tiles
}

// Grid joins grid cards whose forms redirect to from.
func Grid(cards []card.DisplayCard, from string) string {
	if from == "" {
		from = FromGenerator
	}
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(GridCardFrom(c, from))
	}
	return b.String()
}

// ListCard renders one watch-list entry with its status picker and remove
// control. filter is the active filter label, carried so the page reloads
// with the same filter after an update.
func ListCard(e mylist.Entry, filter status.Label) string {
	id := url.PathEscape(e.ID)
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="card" data-id="%s">`, Escape(e.ID))
	fmt.Fprintf(&b, `<img src="%s" alt="%s" loading="lazy">`, Escape(e.Image), Escape(e.Title))
	b.WriteString(`<div class="overlay">`)
	fmt.Fprintf(&b, `<div class="title">%s</div>`, Escape(e.Title))
	fmt.Fprintf(&b, `<form class="status" method="post" action="/mylist/%s/status">`, Escape(id))
	fmt.Fprintf(&b, `<input type="hidden" name="filter" value="%s">`, Escape(string(filter)))
	b.WriteString(`<select name="status" onchange="this.form.submit()">`)
	b.WriteString(options(status.Labels(), status.ToLabel(e.Status)))
	b.WriteString(`</select><button type="submit">Update</button></form>`)
	fmt.Fprintf(&b, `<form class="remove" method="post" action="/mylist/%s/delete">`, Escape(id))
	fmt.Fprintf(&b, `<input type="hidden" name="filter" value="%s">`, Escape(string(filter)))
	b.WriteString(`<button type="submit">Remove</button></form>`)
	b.WriteString(`</div></div>`)
	return b.String()
}

// List renders every entry as a list card.
func List(entries []mylist.Entry, filter status.Label) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(ListCard(e, filter))
	}
	return b.String()
}

// StatusOptions renders the filter dropdown options: "All Statuses" (empty
// value) followed by the six labels.
func StatusOptions(selected status.Label) string {
	var b strings.Builder
	sel := ""
	if selected == "" || selected == status.LabelAll {
		sel = " selected"
	}
	fmt.Fprintf(&b, `<option value=""%s>%s</option>`, sel, Escape(string(status.LabelAll)))
	b.WriteString(options(status.Labels(), selected))
	return b.String()
}

func options(labels []status.Label, selected status.Label) string {
	var b strings.Builder
	for _, l := range labels {
		sel := ""
		if l == selected {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, Escape(string(l)), sel, Escape(string(l)))
	}
	return b.String()
}
