// Package store persists manuscript projects in a local sqlite database.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"ams/format"
	"ams/manuscript"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	language   TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL DEFAULT '',
	formattingData TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS audio (
	project_id    TEXT NOT NULL,
	name          TEXT NOT NULL,
	mime          TEXT NOT NULL,
	chapter_index INTEGER NOT NULL,
	data          BLOB NOT NULL,
	PRIMARY KEY (project_id, name)
);
`

// Store keeps projects in a single sqlite database file.
// NOTE: a connection is not safe for concurrent use, all calls serialize on
// an internal lock.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Summary is a project listing entry, without the heavy payloads.
type Summary struct {
	ID        string
	Title     string
	Author    string
	UpdatedAt time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open project store %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize project store %s: %w", path, err)
	}
	log.Debug("Opened project store", zap.String("path", path))
	return &Store{conn: conn, log: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Save upserts the project with its formatting and audio attachments.
func (s *Store) Save(p *manuscript.Project) (err error) {
	if err = p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defer sqlitex.Save(s.conn)(&err)

	fdata, err := json.Marshal(p.Formatting)
	if err != nil {
		return fmt.Errorf("unable to marshal formatting for project %s: %w", p.ID, err)
	}

	err = sqlitex.Execute(s.conn, `
INSERT INTO projects (id, title, author, language, text, formattingData, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	author = excluded.author,
	language = excluded.language,
	text = excluded.text,
	formattingData = excluded.formattingData,
	updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{
			p.ID, p.Title, p.Author, p.Language, p.Text, string(fdata),
			p.CreatedAt.UTC().Format(time.RFC3339Nano),
			p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}})
	if err != nil {
		return fmt.Errorf("unable to save project %s: %w", p.ID, err)
	}

	err = sqlitex.Execute(s.conn, `DELETE FROM audio WHERE project_id = ?`,
		&sqlitex.ExecOptions{Args: []any{p.ID}})
	if err != nil {
		return fmt.Errorf("unable to replace audio for project %s: %w", p.ID, err)
	}
	for _, a := range p.Audio {
		err = sqlitex.Execute(s.conn, `
INSERT INTO audio (project_id, name, mime, chapter_index, data) VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{p.ID, a.Name, a.Mime, a.ChapterIndex, a.Data}})
		if err != nil {
			return fmt.Errorf("unable to save audio %s for project %s: %w", a.Name, p.ID, err)
		}
	}
	s.log.Debug("Saved project", zap.String("id", p.ID), zap.String("title", p.Title))
	return nil
}

// ErrNotFound is returned when a project id is not in the store.
var ErrNotFound = fmt.Errorf("project not found")

// Load reads a full project back.
func (s *Store) Load(id string) (*manuscript.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		p     *manuscript.Project
		inner error
	)
	err := sqlitex.Execute(s.conn, `
SELECT id, title, author, language, text, formattingData, created_at, updated_at
FROM projects WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				p = &manuscript.Project{
					ID:       stmt.ColumnText(0),
					Title:    stmt.ColumnText(1),
					Author:   stmt.ColumnText(2),
					Language: stmt.ColumnText(3),
					Text:     stmt.ColumnText(4),
				}
				data := &format.Data{}
				if err := json.Unmarshal([]byte(stmt.ColumnText(5)), data); err != nil {
					inner = fmt.Errorf("corrupt formatting for project %s: %w", id, err)
					return nil
				}
				p.Formatting = data
				p.CreatedAt = parseStamp(stmt.ColumnText(6))
				p.UpdatedAt = parseStamp(stmt.ColumnText(7))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to load project %s: %w", id, err)
	}
	if inner != nil {
		return nil, inner
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	err = sqlitex.Execute(s.conn, `
SELECT name, mime, chapter_index, data FROM audio WHERE project_id = ? ORDER BY name`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				buf := make([]byte, stmt.ColumnLen(3))
				stmt.ColumnBytes(3, buf)
				p.Audio = append(p.Audio, manuscript.Attachment{
					Name:         stmt.ColumnText(0),
					Mime:         stmt.ColumnText(1),
					ChapterIndex: stmt.ColumnInt(2),
					Data:         buf,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to load audio for project %s: %w", id, err)
	}
	return p, nil
}

// List returns summaries of all stored projects, most recently updated first.
func (s *Store) List() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Summary
	err := sqlitex.Execute(s.conn, `
SELECT id, title, author, updated_at FROM projects ORDER BY updated_at DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, Summary{
					ID:        stmt.ColumnText(0),
					Title:     stmt.ColumnText(1),
					Author:    stmt.ColumnText(2),
					UpdatedAt: parseStamp(stmt.ColumnText(3)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to list projects: %w", err)
	}
	return out, nil
}

// Delete removes a project and its attachments.
func (s *Store) Delete(id string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer sqlitex.Save(s.conn)(&err)

	err = sqlitex.Execute(s.conn, `DELETE FROM audio WHERE project_id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("unable to delete audio for project %s: %w", id, err)
	}
	err = sqlitex.Execute(s.conn, `DELETE FROM projects WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("unable to delete project %s: %w", id, err)
	}
	if s.conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
