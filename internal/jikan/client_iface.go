package jikan

import (
	"context"

	"github.com/example/animelist/internal/card"
)

// Catalog is the port page controllers and the CLI depend on.
type Catalog interface {
	FetchSeasonalOrCatalog(ctx context.Context) ([]card.RawItem, error)
	FetchFiltered(ctx context.Context, rating string, genreID int) ([]card.RawItem, error)
	FetchGenres(ctx context.Context) ([]Genre, error)
}

var _ Catalog = (*Client)(nil)
