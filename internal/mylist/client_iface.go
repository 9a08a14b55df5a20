package mylist

import (
	"context"

	"github.com/example/animelist/internal/status"
)

// Gateway is the port page controllers and the CLI depend on.
type Gateway interface {
	List(ctx context.Context, code status.Code) ([]Entry, error)
	ListedIDs(ctx context.Context) ([]int, error)
	Create(ctx context.Context, ref AnimeRef, label status.Label) error
	Update(ctx context.Context, id string, label status.Label) error
	Remove(ctx context.Context, id string) error
}

var _ Gateway = (*Client)(nil)
