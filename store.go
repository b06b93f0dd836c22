package pubsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/frontmatter"
)

// ErrPostNotFound is returned by Store.GetPost for an unknown slug.
var ErrPostNotFound = errors.New("post not found")

// Store wraps the SQLite export of a SiteIndex. The build replaces its
// contents wholesale; the CLI's list command reads it back without
// reparsing content.
type Store struct {
	db *sql.DB
}

// PostRecord is a post as exported to the database.
type PostRecord struct {
	Path       string
	Slug       string
	Title      string
	Date       time.Time
	Permalink  string
	Summary    string
	Categories []string
	Tags       []string
}

// NewStore opens (or creates) the SQLite database at path, ensures its
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets `serve` read while a rebuild writes. synchronous=NORMAL is
	// safe with WAL and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    path TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    date_unix INTEGER NOT NULL,
    permalink TEXT NOT NULL,
    summary TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS post_terms (
    post_path TEXT NOT NULL REFERENCES posts(path) ON DELETE CASCADE,
    kind TEXT NOT NULL,
    key TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (post_path, kind, position)
);
CREATE INDEX IF NOT EXISTS post_terms_lookup ON post_terms (kind, key);
CREATE TABLE IF NOT EXISTS terms (
    kind TEXT NOT NULL,
    key TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    count INTEGER NOT NULL,
    PRIMARY KEY (kind, key)
);
`)
	return err
}

// ReplaceIndex swaps the stored posts and terms for those of index in a
// single transaction.
func (s *Store) ReplaceIndex(ctx context.Context, index *SiteIndex) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"post_terms", "terms", "posts"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range index.Posts() {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO posts (path, slug, title, date, date_unix, permalink, summary) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Path(), p.Slug(), p.Title(), p.Date().Format(frontmatter.DateLayout), p.Date().Unix(), p.Permalink(), p.Summary())
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.Path(), err)
		}
		for _, kind := range []TermKind{Categories, Tags} {
			names := p.Categories()
			if kind == Tags {
				names = p.Tags()
			}
			for i, name := range names {
				_, err = tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO post_terms (post_path, kind, key, name, position) VALUES (?, ?, ?, ?, ?)`,
					p.Path(), string(kind), normalizeTerm(name), name, i)
				if err != nil {
					return fmt.Errorf("insert %s of %s: %w", kind, p.Path(), err)
				}
			}
		}
	}

	for _, kind := range []TermKind{Categories, Tags} {
		for _, t := range index.Terms(kind) {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO terms (kind, key, name, slug, count) VALUES (?, ?, ?, ?, ?)`,
				string(kind), normalizeTerm(t.Name), t.Name, t.Slug, t.Count)
			if err != nil {
				return fmt.Errorf("insert %s %q: %w", kind, t.Name, err)
			}
		}
	}
	return tx.Commit()
}

// ListPosts returns posts newest first. If term is non-empty, results are
// filtered to posts carrying that category or tag, compared
// case-insensitively.
func (s *Store) ListPosts(kind TermKind, term string) ([]PostRecord, error) {
	const cols = `SELECT path, slug, title, date, permalink, summary FROM posts`
	const order = ` ORDER BY date_unix DESC, path ASC`
	var rows *sql.Rows
	var err error
	if term == "" {
		rows, err = s.db.Query(cols + order)
	} else {
		rows, err = s.db.Query(cols+` WHERE EXISTS (SELECT 1 FROM post_terms t WHERE t.post_path = posts.path AND t.kind = ? AND t.key = ?)`+order,
			string(kind), normalizeTerm(term))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []PostRecord
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadTerms(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post by slug.
func (s *Store) GetPost(slug string) (PostRecord, error) {
	row := s.db.QueryRow(`SELECT path, slug, title, date, permalink, summary FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PostRecord{}, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	if err != nil {
		return PostRecord{}, err
	}
	posts := []PostRecord{p}
	if err := s.loadTerms(posts); err != nil {
		return PostRecord{}, err
	}
	return posts[0], nil
}

// ListTerms returns every category or tag with its post count, sorted by
// name.
func (s *Store) ListTerms(kind TermKind) ([]Term, error) {
	rows, err := s.db.Query(`SELECT name, slug, count FROM terms WHERE kind = ? ORDER BY key, name`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.Name, &t.Slug, &t.Count); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (PostRecord, error) {
	var p PostRecord
	var date string
	if err := row.Scan(&p.Path, &p.Slug, &p.Title, &date, &p.Permalink, &p.Summary); err != nil {
		return PostRecord{}, err
	}
	t, err := frontmatter.ParseDate(date)
	if err != nil {
		return PostRecord{}, fmt.Errorf("post %s: %w", p.Path, err)
	}
	p.Date = t
	return p, nil
}

func (s *Store) loadTerms(posts []PostRecord) error {
	if len(posts) == 0 {
		return nil
	}
	byPath := make(map[string]*PostRecord, len(posts))
	for i := range posts {
		byPath[posts[i].Path] = &posts[i]
	}
	rows, err := s.db.Query(`SELECT post_path, kind, name FROM post_terms ORDER BY post_path, kind, position`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var path, kind, name string
		if err := rows.Scan(&path, &kind, &name); err != nil {
			return err
		}
		p, ok := byPath[path]
		if !ok {
			continue
		}
		if TermKind(kind) == Categories {
			p.Categories = append(p.Categories, name)
		} else {
			p.Tags = append(p.Tags, name)
		}
	}
	return rows.Err()
}
