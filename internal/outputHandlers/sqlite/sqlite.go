package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/crawl"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	"CREATE TABLE IF NOT EXISTS runs (id text not null primary key, started_at text, message_id text, send_error text);",
	"CREATE TABLE IF NOT EXISTS boards (run_id text not null, position integer, board text, url text, error text);",
	"CREATE TABLE IF NOT EXISTS candidates (run_id text not null, board_position integer, position integer, title text, href text);",
}

// Run is what gets archived for one digest run.
type Run struct {
	StartedAt time.Time
	Results   []crawl.Result
	MessageID string
	SendError string
}

// SqliteOutput appends every run to a sqlite file. It is write only; nothing in the digest reads
// the archive back.
type SqliteOutput struct {
	Database string
	db       *sql.DB
}

func (o *SqliteOutput) Init() error {
	if o.Database == "" {
		return errors.New("sqlite database file not set")
	}

	db, err := sql.Open("sqlite3", o.Database)
	if err != nil {
		return fmt.Errorf("open %s: %w", o.Database, err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("failed to create table %q: %w", stmt, err)
		}
	}
	o.db = db
	return nil
}

func (o *SqliteOutput) Cleanup() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

// Record stores run in a single transaction and returns the id it was stored under.
func (o *SqliteOutput) Record(run Run) (string, error) {
	if o.db == nil {
		return "", errors.New("sqlite output not initialised")
	}

	id := uuid.NewString()
	tx, err := o.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT into runs(id, started_at, message_id, send_error) values(?, ?, ?, ?);",
		id, run.StartedAt.UTC().Format(time.RFC3339), run.MessageID, run.SendError); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, r := range run.Results {
		if _, err := tx.Exec("INSERT into boards(run_id, position, board, url, error) values(?, ?, ?, ?, ?);",
			id, i, r.Board, r.URL, r.Error); err != nil {
			return "", fmt.Errorf("insert board %s: %w", r.Board, err)
		}
		for j, c := range r.Jobs {
			if _, err := tx.Exec("INSERT into candidates(run_id, board_position, position, title, href) values(?, ?, ?, ?, ?);",
				id, i, j, c.Title, c.Href); err != nil {
				return "", fmt.Errorf("insert candidate %s: %w", c.Href, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}
