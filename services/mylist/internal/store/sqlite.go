package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/example/animelist/internal/status"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

// SQLiteListStore persists the watch list in a single SQLite file.
type SQLiteListStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and creates) the database at path and applies the schema.
// path may be ":memory:".
func OpenSQLite(ctx context.Context, path string) (*SQLiteListStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	for _, stmt := range splitStatements(schemaSQLite) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: schema: %w", err)
		}
	}
	return &SQLiteListStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteListStore) Close() error { return s.db.Close() }

func (s *SQLiteListStore) EnsureUser(ctx context.Context, email, username string) (User, error) {
	const ins = `INSERT INTO users (id, email, username) VALUES (?, ?, ?) ON CONFLICT (email) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, ins, uuid.NewString(), email, username); err != nil {
		return User{}, err
	}
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, username FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Username)
	return u, err
}

const sqliteEntryQuery = `SELECT l.id, a.jikan_id, a.title, COALESCE(a.image, ''), l.status, l.current_episode, l.score, l.updated_at
FROM user_anime_list l JOIN anime a ON a.id = l.anime_id`

func (s *SQLiteListStore) List(ctx context.Context, userID string, code status.Code) ([]Entry, error) {
	q := sqliteEntryQuery + ` WHERE l.user_id = ? AND (? = '' OR l.status = ?) ORDER BY l.updated_at DESC, l.id`
	rows, err := s.db.QueryContext(ctx, q, userID, string(code), string(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteListStore) Create(ctx context.Context, userID string, in NewEntry) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const upsertAnime = `INSERT INTO anime (id, jikan_id, title, image) VALUES (?, ?, ?, NULLIF(?, ''))
	ON CONFLICT (jikan_id) DO UPDATE SET title = excluded.title, image = COALESCE(excluded.image, anime.image)`
	if _, err := tx.ExecContext(ctx, upsertAnime, uuid.NewString(), in.JikanID, in.Title, in.Image); err != nil {
		return Entry{}, err
	}
	var animeID, image string
	if err := tx.QueryRowContext(ctx, `SELECT id, COALESCE(image, '') FROM anime WHERE jikan_id = ?`, in.JikanID).
		Scan(&animeID, &image); err != nil {
		return Entry{}, err
	}

	code := in.Status
	if code == "" {
		code = status.Default
	}
	e := Entry{ID: uuid.NewString(), JikanID: in.JikanID, Title: in.Title, Image: image, Status: code, UpdatedAt: s.now()}
	const insertEntry = `INSERT INTO user_anime_list (id, user_id, anime_id, status, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertEntry, e.ID, userID, animeID, string(code), e.UpdatedAt.UnixNano()); err != nil {
		if isSQLiteUniqueViolation(err) {
			return Entry{}, ErrAlreadyListed
		}
		return Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *SQLiteListStore) UpdateStatus(ctx context.Context, userID, entryID string, code status.Code) (Entry, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_anime_list SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(code), s.now().UnixNano(), entryID, userID)
	if err != nil {
		return Entry{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Entry{}, ErrNotFound
	}
	e, err := scanSQLiteEntry(s.db.QueryRowContext(ctx, sqliteEntryQuery+` WHERE l.id = ?`, entryID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *SQLiteListStore) Delete(ctx context.Context, userID, entryID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_anime_list WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteListStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntry(row rowScanner) (Entry, error) {
	var (
		e       Entry
		code    string
		score   sql.NullInt64
		updated int64
	)
	if err := row.Scan(&e.ID, &e.JikanID, &e.Title, &e.Image, &code, &e.CurrentEpisode, &score, &updated); err != nil {
		return Entry{}, err
	}
	e.Status = status.Code(code)
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}
	e.UpdatedAt = time.Unix(0, updated).UTC()
	return e, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
