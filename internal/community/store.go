// Package community provides the student-community document store and
// the assistant tools that read and write it.
package community

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store manages community records in SQLite. The real platform keeps
// these behind CRUD services; the assistant only needs the narrow
// operations its tools call.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewStoreWithDB wraps an existing database connection.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			headline TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			course TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS placements (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			role TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			deadline TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS classrooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			instructor TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_placements_created ON placements(created_at DESC);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Profile returns the user's profile document.
func (s *Store) Profile(ctx context.Context, userID string) (map[string]any, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT headline, bio, course, updated_at FROM profiles WHERE user_id = ?`, userID)

	var headline, bio, course, updatedAt string
	if err := row.Scan(&headline, &bio, &course, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile for %q: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return map[string]any{
		"headline":  headline,
		"bio":       bio,
		"course":    course,
		"updatedAt": updatedAt,
	}, nil
}

// UpsertProfile creates or replaces the user's profile.
func (s *Store) UpsertProfile(ctx context.Context, userID, headline, bio, course string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, headline, bio, course, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			headline = excluded.headline,
			bio = excluded.bio,
			course = excluded.course,
			updated_at = excluded.updated_at`,
		userID, headline, bio, course, now())
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetHeadline updates only the headline, creating the profile if the
// user has none yet.
func (s *Store) SetHeadline(ctx context.Context, userID, headline string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, headline, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			headline = excluded.headline,
			updated_at = excluded.updated_at`,
		userID, headline, now())
	if err != nil {
		return fmt.Errorf("set headline: %w", err)
	}
	return nil
}

// AddPost inserts a post and returns its id.
func (s *Store) AddPost(ctx context.Context, authorID, title, body string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, authorID, title, body, now())
	if err != nil {
		return "", fmt.Errorf("add post: %w", err)
	}
	return id, nil
}

// SearchPosts returns posts whose title or body matches the query,
// newest first.
func (s *Store) SearchPosts(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, title, body, created_at FROM posts
		WHERE title LIKE ? OR body LIKE ?
		ORDER BY created_at DESC LIMIT ?`,
		like(query), like(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		var id, authorID, title, body, createdAt string
		if err := rows.Scan(&id, &authorID, &title, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		results = append(results, map[string]any{
			"id":        id,
			"authorId":  authorID,
			"title":     title,
			"body":      body,
			"createdAt": createdAt,
		})
	}
	return results, rows.Err()
}

// AddPlacement inserts a placement listing and returns its id.
func (s *Store) AddPlacement(ctx context.Context, company, role, location, deadline, description string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO placements (id, company, role, location, deadline, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, company, role, location, deadline, description, now())
	if err != nil {
		return "", fmt.Errorf("add placement: %w", err)
	}
	return id, nil
}

// SearchPlacements returns placement listings matching the query.
func (s *Store) SearchPlacements(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company, role, location, deadline, description FROM placements
		WHERE company LIKE ? OR role LIKE ? OR description LIKE ?
		ORDER BY created_at DESC LIMIT ?`,
		like(query), like(query), like(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search placements: %w", err)
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		var id, company, role, location, deadline, description string
		if err := rows.Scan(&id, &company, &role, &location, &deadline, &description); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		results = append(results, map[string]any{
			"id":          id,
			"company":     company,
			"role":        role,
			"location":    location,
			"deadline":    deadline,
			"description": description,
		})
	}
	return results, rows.Err()
}

// AddResource inserts a shared resource and returns its id.
func (s *Store) AddResource(ctx context.Context, title, url, subject, description string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, title, url, subject, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, url, subject, description, now())
	if err != nil {
		return "", fmt.Errorf("add resource: %w", err)
	}
	return id, nil
}

// SearchResources returns resources matching the query.
func (s *Store) SearchResources(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, subject, description FROM resources
		WHERE title LIKE ? OR subject LIKE ? OR description LIKE ?
		ORDER BY created_at DESC LIMIT ?`,
		like(query), like(query), like(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		var id, title, url, subject, description string
		if err := rows.Scan(&id, &title, &url, &subject, &description); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		results = append(results, map[string]any{
			"id":          id,
			"title":       title,
			"url":         url,
			"subject":     subject,
			"description": description,
		})
	}
	return results, rows.Err()
}

// AddClassroom inserts a classroom and returns its id.
func (s *Store) AddClassroom(ctx context.Context, name, subject, instructor string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classrooms (id, name, subject, instructor, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, name, subject, instructor, now())
	if err != nil {
		return "", fmt.Errorf("add classroom: %w", err)
	}
	return id, nil
}

// ListClassrooms returns up to limit classrooms, alphabetically.
func (s *Store) ListClassrooms(ctx context.Context, limit int) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, instructor FROM classrooms ORDER BY name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		var id, name, subject, instructor string
		if err := rows.Scan(&id, &name, &subject, &instructor); err != nil {
			return nil, fmt.Errorf("scan classroom: %w", err)
		}
		results = append(results, map[string]any{
			"id":         id,
			"name":       name,
			"subject":    subject,
			"instructor": instructor,
		})
	}
	return results, rows.Err()
}

func like(query string) string {
	return "%" + query + "%"
}
