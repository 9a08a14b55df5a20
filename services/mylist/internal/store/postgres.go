package store

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/animelist/internal/status"
)

//go:embed schema_postgres.sql
var schemaPostgres string

// PostgresListStore persists the watch list in Postgres.
type PostgresListStore struct {
	pool *pgxpool.Pool
}

func NewPostgresListStore(pool *pgxpool.Pool) *PostgresListStore {
	return &PostgresListStore{pool: pool}
}

// Migrate creates the tables when they do not exist.
func (s *PostgresListStore) Migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(schemaPostgres) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresListStore) EnsureUser(ctx context.Context, email, username string) (User, error) {
	const q = `INSERT INTO users (id, email, username)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
	           RETURNING id, email, username`
	var u User
	err := s.pool.QueryRow(ctx, q, uuid.NewString(), email, username).Scan(&u.ID, &u.Email, &u.Username)
	return u, err
}

const entryColumns = `l.id, a.jikan_id, a.title, COALESCE(a.image, ''), l.status, l.current_episode, l.score, l.updated_at`

func (s *PostgresListStore) List(ctx context.Context, userID string, code status.Code) ([]Entry, error) {
	q := `SELECT ` + entryColumns + `
	      FROM user_anime_list l JOIN anime a ON a.id = l.anime_id
	      WHERE l.user_id = $1 AND ($2::text = '' OR l.status = $2::text)
	      ORDER BY l.updated_at DESC, l.id`
	rows, err := s.pool.Query(ctx, q, userID, string(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresListStore) Create(ctx context.Context, userID string, in NewEntry) (Entry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Entry{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsertAnime = `INSERT INTO anime (id, jikan_id, title, image)
	                     VALUES ($1, $2, $3, NULLIF($4, ''))
	                     ON CONFLICT (jikan_id) DO UPDATE SET
	                       title = EXCLUDED.title,
	                       image = COALESCE(EXCLUDED.image, anime.image)
	                     RETURNING id, COALESCE(image, '')`
	var animeID, image string
	if err := tx.QueryRow(ctx, upsertAnime, uuid.NewString(), in.JikanID, in.Title, in.Image).Scan(&animeID, &image); err != nil {
		return Entry{}, err
	}

	code := in.Status
	if code == "" {
		code = status.Default
	}
	const insertEntry = `INSERT INTO user_anime_list (id, user_id, anime_id, status, updated_at)
	                     VALUES ($1, $2, $3, $4, now())
	                     RETURNING id, current_episode, score, updated_at`
	e := Entry{JikanID: in.JikanID, Title: in.Title, Image: image, Status: code}
	err = tx.QueryRow(ctx, insertEntry, uuid.NewString(), userID, animeID, string(code)).
		Scan(&e.ID, &e.CurrentEpisode, &e.Score, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Entry{}, ErrAlreadyListed
		}
		return Entry{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func (s *PostgresListStore) UpdateStatus(ctx context.Context, userID, entryID string, code status.Code) (Entry, error) {
	const q = `WITH l AS (
	             UPDATE user_anime_list SET status = $3, updated_at = now()
	             WHERE id = $1 AND user_id = $2
	             RETURNING *
	           )
	           SELECT ` + entryColumns + ` FROM l JOIN anime a ON a.id = l.anime_id`
	e, err := scanEntry(s.pool.QueryRow(ctx, q, entryID, userID, string(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *PostgresListStore) Delete(ctx context.Context, userID, entryID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_anime_list WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresListStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var code string
	if err := row.Scan(&e.ID, &e.JikanID, &e.Title, &e.Image, &code, &e.CurrentEpisode, &e.Score, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	e.Status = status.Code(code)
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
