// Package card turns the catalog's heterogeneous item shapes into one flat
// DisplayCard. Each field is resolved by an ordered list of named rules; the
// first rule producing a non-empty value wins.
package card

import (
	"strconv"

	"github.com/google/uuid"
)

// RawItem is one element of a catalog "data" array. Seasonal listings may
// wrap the object under "anime"; some payloads nest it under "entry".
type RawItem struct {
	Anime *RawItem `json:"anime,omitempty"`
	Entry *RawItem `json:"entry,omitempty"`

	MalID    int         `json:"mal_id,omitempty"`
	Title    string      `json:"title,omitempty"`
	Name     string      `json:"name,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	Images   *ImageSet   `json:"images,omitempty"`
	Synopsis string      `json:"synopsis,omitempty"`
	Genres   []NamedRef  `json:"genres,omitempty"`
	Trailer  *TrailerRef `json:"trailer,omitempty"`
}

type ImageSet struct {
	JPG struct {
		ImageURL      string `json:"image_url,omitempty"`
		LargeImageURL string `json:"large_image_url,omitempty"`
	} `json:"jpg"`
}

type NamedRef struct {
	MalID int    `json:"mal_id,omitempty"`
	Name  string `json:"name"`
}

type TrailerRef struct {
	Images struct {
		Large         string `json:"large,omitempty"`
		LargeImageURL string `json:"large_image_url,omitempty"`
	} `json:"images"`
}

// DisplayCard is the normalized projection used for rendering. Its JSON
// form is what the add-to-list forms carry back to the server.
type DisplayCard struct {
	ID       string   `json:"id"`
	MalID    int      `json:"mal_id"`
	Title    string   `json:"title"`
	Image    string   `json:"image"`
	Synopsis string   `json:"synopsis"`
	Genres   []string `json:"genres"`
}

const untitled = "Untitled"

type stringRule struct {
	name string
	get  func(*RawItem) string
}

type intRule struct {
	name string
	get  func(*RawItem) int
}

type listRule struct {
	name string
	get  func(*RawItem) []string
}

var malIDRules = []intRule{
	{"mal_id", func(it *RawItem) int { return it.MalID }},
	{"entry.mal_id", func(it *RawItem) int {
		if it.Entry == nil {
			return 0
		}
		return it.Entry.MalID
	}},
}

var titleRules = []stringRule{
	{"title", func(it *RawItem) string { return it.Title }},
	{"name", func(it *RawItem) string { return it.Name }},
	{"entry.title", func(it *RawItem) string {
		if it.Entry == nil {
			return ""
		}
		return it.Entry.Title
	}},
}

var imageRules = []stringRule{
	{"images.jpg.image_url", func(it *RawItem) string {
		if it.Images == nil {
			return ""
		}
		return it.Images.JPG.ImageURL
	}},
	{"image_url", func(it *RawItem) string { return it.ImageURL }},
	{"images.jpg.large_image_url", func(it *RawItem) string {
		if it.Images == nil {
			return ""
		}
		return it.Images.JPG.LargeImageURL
	}},
	{"entry.images.jpg.image_url", func(it *RawItem) string {
		if it.Entry == nil || it.Entry.Images == nil {
			return ""
		}
		return it.Entry.Images.JPG.ImageURL
	}},
	{"trailer.images.large", func(it *RawItem) string {
		if it.Trailer == nil {
			return ""
		}
		return it.Trailer.Images.Large
	}},
	{"trailer.images.large_image_url", func(it *RawItem) string {
		if it.Trailer == nil {
			return ""
		}
		return it.Trailer.Images.LargeImageURL
	}},
}

var synopsisRules = []stringRule{
	{"synopsis", func(it *RawItem) string { return it.Synopsis }},
	{"entry.synopsis", func(it *RawItem) string {
		if it.Entry == nil {
			return ""
		}
		return it.Entry.Synopsis
	}},
}

var genreRules = []listRule{
	{"genres[].name", func(it *RawItem) []string { return names(it.Genres) }},
	{"entry.genres[].name", func(it *RawItem) []string {
		if it.Entry == nil {
			return nil
		}
		return names(it.Entry.Genres)
	}},
}

func names(refs []NamedRef) []string {
	var out []string
	for _, g := range refs {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

func firstString(rules []stringRule, it *RawItem) string {
	for _, r := range rules {
		if v := r.get(it); v != "" {
			return v
		}
	}
	return ""
}

func firstInt(rules []intRule, it *RawItem) int {
	for _, r := range rules {
		if v := r.get(it); v != 0 {
			return v
		}
	}
	return 0
}

func firstList(rules []listRule, it *RawItem) []string {
	for _, r := range rules {
		if v := r.get(it); len(v) > 0 {
			return v
		}
	}
	return []string{}
}

// Normalize never fails; missing fields degrade to defaults.
func Normalize(raw RawItem) DisplayCard {
	it := &raw
	if raw.Anime != nil {
		it = raw.Anime
	}

	c := DisplayCard{
		MalID:    firstInt(malIDRules, it),
		Title:    firstString(titleRules, it),
		Image:    firstString(imageRules, it),
		Synopsis: firstString(synopsisRules, it),
		Genres:   firstList(genreRules, it),
	}
	if c.MalID != 0 {
		c.ID = strconv.Itoa(c.MalID)
	} else {
		// Render key only; never sent to the backend as an identifier.
		c.ID = uuid.NewString()
	}
	if c.Title == "" {
		c.Title = untitled
	}
	return c
}

func NormalizeAll(items []RawItem) []DisplayCard {
	out := make([]DisplayCard, 0, len(items))
	for _, it := range items {
		out = append(out, Normalize(it))
	}
	return out
}

// MalIDOf resolves the catalog id the same way Normalize does.
func MalIDOf(raw RawItem) int {
	it := &raw
	if raw.Anime != nil {
		it = raw.Anime
	}
	return firstInt(malIDRules, it)
}

// ExcludeListed drops items whose catalog id is already on the watch list.
func ExcludeListed(items []RawItem, listedIDs []int) []RawItem {
	if len(listedIDs) == 0 {
		return items
	}
	listed := make(map[int]struct{}, len(listedIDs))
	for _, id := range listedIDs {
		listed[id] = struct{}{}
	}
	out := make([]RawItem, 0, len(items))
	for _, it := range items {
		if _, ok := listed[MalIDOf(it)]; ok {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Take returns at most the first n items.
func Take[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// ImageRuleNames lists the image rules in priority order.
func ImageRuleNames() []string {
	out := make([]string, len(imageRules))
	for i, r := range imageRules {
		out[i] = r.name
	}
	return out
}

// TitleRuleNames lists the title rules in priority order.
func TitleRuleNames() []string {
	out := make([]string, len(titleRules))
	for i, r := range titleRules {
		out[i] = r.name
	}
	return out
}
