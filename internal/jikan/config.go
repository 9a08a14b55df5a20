package jikan

import "time"

const (
	DefaultBaseURL   = "https://api.jikan.moe/v4"
	DefaultUserAgent = "animelist-web/1.0"
)

// Config is injected by the caller; the client never reads process globals.
type Config struct {
	BaseURL   string
	UserAgent string

	DefaultRating string
	OrderBy       string
	Limit         int

	// GenreDenylist names genres hidden from the genre picker.
	GenreDenylist []string

	Timeout           time.Duration
	RequestsPerSecond float64
	GenreCacheTTL     time.Duration
}

// DefaultGenreDenylist is the fixed set of mature or niche genres never offered.
var DefaultGenreDenylist = []string{
	"Ecchi", "Boys Love", "Adult", "Hentai", "Adult Cast", "Avant Garde", "Yuri", "Girls Love",
	"Yaoi", "Erotica", "Horror", "CGDCT", "Magical Sex Shift", "Crossdressing", "Gore", "Harem",
	"Idols (Female)", "Idols (Male)", "Love Polygon", "Music", "Reverse Harem", "Organized Crime",
	"Racing", "Military", "Combat Sports", "Iyashikei", "Survival", "Anthropomorphic", "Delinquents",
	"High Stakes Game", "Otaku Culture", "Parody", "Pets", "Samurai", "Josei", "Villainess", "Seinen",
	"Psychological", "Gag Humor", "Visual Arts", "Video Game", "Vampire", "Martial Arts",
	"Love Status Quo", "Reincarnation",
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         DefaultUserAgent,
		DefaultRating:     "g",
		OrderBy:           "popularity",
		Limit:             24,
		GenreDenylist:     DefaultGenreDenylist,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 3,
		GenreCacheTTL:     24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.DefaultRating == "" {
		c.DefaultRating = d.DefaultRating
	}
	if c.OrderBy == "" {
		c.OrderBy = d.OrderBy
	}
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	if c.GenreDenylist == nil {
		c.GenreDenylist = d.GenreDenylist
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.GenreCacheTTL <= 0 {
		c.GenreCacheTTL = d.GenreCacheTTL
	}
	return c
}
