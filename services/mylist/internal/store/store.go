// Package store persists users, anime and watch-list entries. Every list
// operation is scoped to one user; the (user, anime) pair is unique.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/animelist/internal/status"
)

var (
	ErrAlreadyListed = errors.New("store: anime already on list")
	ErrNotFound      = errors.New("store: list entry not found")
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Entry is a list entry joined with its anime, in the wire shape clients read.
type Entry struct {
	ID             string      `json:"_id"`
	JikanID        int         `json:"jikanId"`
	Title          string      `json:"title"`
	Image          string      `json:"image,omitempty"`
	Status         status.Code `json:"status"`
	CurrentEpisode int         `json:"currentEpisode"`
	Score          *int        `json:"score,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NewEntry is the create payload. Anime rows are upserted by JikanID.
type NewEntry struct {
	JikanID int
	Title   string
	Image   string
	Status  status.Code
}

// ListStore defines the contract for watch-list persistence.
type ListStore interface {
	// EnsureUser returns the user with email, creating it when absent.
	EnsureUser(ctx context.Context, email, username string) (User, error)
	// List returns the user's entries, newest update first. An empty code means all.
	List(ctx context.Context, userID string, code status.Code) ([]Entry, error)
	Create(ctx context.Context, userID string, in NewEntry) (Entry, error)
	UpdateStatus(ctx context.Context, userID, entryID string, code status.Code) (Entry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Ping(ctx context.Context) error
}
