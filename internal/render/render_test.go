package render

import (
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/status"
)

var metaRe = regexp.MustCompile(`<div class="meta">(.*?)</div>`)

func sample() card.DisplayCard {
	return card.DisplayCard{
		ID:       "42",
		MalID:    42,
		Title:    "Sample",
		Image:    "https://cdn/42.jpg",
		Synopsis: strings.Repeat("a", 300),
		Genres:   []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8", "g9", "g10"},
	}
}

func TestEscape(t *testing.T) {
	require.Equal(t, "&amp;&lt;&gt;&quot;&#39;", Escape(`&<>"'`))
	require.Equal(t, "plain", Escape("plain"))
}

func TestTile_EscapesHostileTitle(t *testing.T) {
	c := sample()
	c.Title = "<script>alert(1)</script>"
	out := Tile(c)
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, `<div class="title">&lt;script&gt;alert(1)&lt;/script&gt;</div>`)
	require.Contains(t, out, `alt="&lt;script&gt;alert(1)&lt;/script&gt;"`)

	grid := GridCard(c)
	require.NotContains(t, grid, "<script>")
}

func TestSynopsisTruncation(t *testing.T) {
	c := sample()
	m := metaRe.FindStringSubmatch(Tile(c))
	require.Len(t, m, 2)
	require.Len(t, m[1], 160)

	m = metaRe.FindStringSubmatch(GridCard(c))
	require.Len(t, m, 2)
	require.Len(t, m[1], 140)
}

func TestSynopsisTruncatedBeforeEscaping(t *testing.T) {
	c := sample()
	c.Synopsis = strings.Repeat("&", 200)
	m := metaRe.FindStringSubmatch(Tile(c))
	require.Equal(t, strings.Repeat("&amp;", 160), m[1])
}

func TestTruncate_Runes(t *testing.T) {
	require.Equal(t, "日本", Truncate("日本語", 2))
	require.Equal(t, "short", Truncate("short", 160))
	require.Equal(t, "", Truncate("x", 0))
}

func TestGenreCap(t *testing.T) {
	c := sample()
	require.Equal(t, 4, strings.Count(Tile(c), `class="genre-pill"`))
	require.Equal(t, 3, strings.Count(GridCard(c), `class="genre-pill"`))

	c.Genres = []string{"only"}
	require.Equal(t, 1, strings.Count(Tile(c), `class="genre-pill"`))
}

func TestAddForm_CarriesCardJSON(t *testing.T) {
	c := sample()
	c.Title = `Quote "and" 'apostrophe'`
	out := Tile(c)
	require.Contains(t, out, `action="/mylist"`)
	require.Contains(t, out, `name="from" value="/"`)
	require.Contains(t, out, `name="status" value="Want to Watch"`)
	require.Contains(t, out, `name="status" value="Not Interested"`)

	m := regexp.MustCompile(`name="card" value="([^"]*)"`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	var back card.DisplayCard
	require.NoError(t, json.Unmarshal([]byte(html.UnescapeString(m[1])), &back))
	require.Equal(t, c, back)
}

func TestGridFrom(t *testing.T) {
	out := Grid([]card.DisplayCard{sample(), sample()}, "/generator?genre=4")
	require.Equal(t, 2, strings.Count(out, `<div class="card">`))
	require.Contains(t, out, `name="from" value="/generator?genre=4"`)
	require.Contains(t, Grid([]card.DisplayCard{sample()}, ""), `value="/generator"`)
}

func TestTicker_Doubles(t *testing.T) {
	cards := make([]card.DisplayCard, 12)
	for i := range cards {
		cards[i] = sample()
	}
	require.Equal(t, 24, strings.Count(Ticker(cards), `<div class="card" data-id=`))
	require.Empty(t, Ticker(nil))
}

func TestListCard(t *testing.T) {
	e := mylist.Entry{ID: "abc", JikanID: 5, Title: "<b>bold</b>", Image: `x" onerror="y`, Status: status.Paused}
	out := ListCard(e, status.LabelCompleted)
	require.NotContains(t, out, "<b>")
	require.NotContains(t, out, `x" onerror`)
	require.Contains(t, out, `action="/mylist/abc/status"`)
	require.Contains(t, out, `action="/mylist/abc/delete"`)
	require.Equal(t, 2, strings.Count(out, `name="filter" value="Completed"`))
	require.Contains(t, out, `<option value="Paused" selected>Paused</option>`)
	require.Equal(t, 1, strings.Count(out, " selected"))
	require.Contains(t, out, ">Remove</button>")
}

func TestStatusOptions(t *testing.T) {
	out := StatusOptions("")
	require.True(t, strings.HasPrefix(out, `<option value="" selected>All Statuses</option>`))
	require.Equal(t, 7, strings.Count(out, "<option"))

	out = StatusOptions(status.LabelCompleted)
	require.Contains(t, out, `<option value="Completed" selected>`)
	require.Contains(t, out, `<option value="">All Statuses</option>`)
}
