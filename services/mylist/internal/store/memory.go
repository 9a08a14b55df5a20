package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/animelist/internal/status"
)

type memAnime struct {
	id      string
	jikanID int
	title   string
	image   string
}

type memEntry struct {
	id             string
	userID         string
	animeID        string
	status         status.Code
	currentEpisode int
	score          *int
	updatedAt      time.Time
}

// InMemoryListStore is a development-only in-memory implementation.
type InMemoryListStore struct {
	mu      sync.RWMutex
	users   map[string]User      // email -> user
	anime   map[int]*memAnime    // jikanId -> anime
	entries map[string]*memEntry // id -> entry
	now     func() time.Time
}

func NewInMemoryListStore() *InMemoryListStore {
	return &InMemoryListStore{
		users:   make(map[string]User),
		anime:   make(map[int]*memAnime),
		entries: make(map[string]*memEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryListStore) EnsureUser(_ context.Context, email, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	u := User{ID: uuid.NewString(), Email: email, Username: username}
	s.users[email] = u
	return u, nil
}

func (s *InMemoryListStore) List(_ context.Context, userID string, code status.Code) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Entry{}
	for _, e := range s.entries {
		if e.userID != userID {
			continue
		}
		if code != "" && e.status != code {
			continue
		}
		out = append(out, s.view(e))
	}
	sortEntries(out)
	return out, nil
}

func (s *InMemoryListStore) Create(_ context.Context, userID string, in NewEntry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[in.JikanID]
	if ok {
		for _, e := range s.entries {
			if e.userID == userID && e.animeID == a.id {
				return Entry{}, ErrAlreadyListed
			}
		}
	} else {
		a = &memAnime{id: uuid.NewString(), jikanID: in.JikanID}
		s.anime[in.JikanID] = a
	}
	a.title = in.Title
	if in.Image != "" {
		a.image = in.Image
	}
	code := in.Status
	if code == "" {
		code = status.Default
	}
	e := &memEntry{id: uuid.NewString(), userID: userID, animeID: a.id, status: code, updatedAt: s.now()}
	s.entries[e.id] = e
	return s.view(e), nil
}

func (s *InMemoryListStore) UpdateStatus(_ context.Context, userID, entryID string, code status.Code) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || e.userID != userID {
		return Entry{}, ErrNotFound
	}
	e.status = code
	e.updatedAt = s.now()
	return s.view(e), nil
}

func (s *InMemoryListStore) Delete(_ context.Context, userID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || e.userID != userID {
		return ErrNotFound
	}
	delete(s.entries, entryID)
	return nil
}

func (s *InMemoryListStore) Ping(context.Context) error { return nil }

// view must be called with s.mu held.
func (s *InMemoryListStore) view(e *memEntry) Entry {
	v := Entry{
		ID:             e.id,
		Status:         e.status,
		CurrentEpisode: e.currentEpisode,
		Score:          e.score,
		UpdatedAt:      e.updatedAt,
	}
	for _, a := range s.anime {
		if a.id == e.animeID {
			v.JikanID, v.Title, v.Image = a.jikanID, a.title, a.image
			break
		}
	}
	return v
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].UpdatedAt.Equal(es[j].UpdatedAt) {
			return es[i].UpdatedAt.After(es[j].UpdatedAt)
		}
		return es[i].ID < es[j].ID
	})
}
