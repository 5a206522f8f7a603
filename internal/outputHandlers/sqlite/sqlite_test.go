package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/crawl"
	"github.com/AlfredBerg/jobdigest/internal/extract"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	o := &SqliteOutput{Database: path}
	require.NoError(t, o.Init())

	run := Run{
		StartedAt: time.Date(2026, 10, 19, 3, 30, 0, 0, time.UTC),
		Results: []crawl.Result{
			{Board: "Wellfound", URL: "https://wellfound.com/jobs", Jobs: []extract.Candidate{
				{Title: "Junior React Native Dev", Href: "https://wellfound.com/jobs/1"},
				{Title: "Mobile Engineer", Href: "https://wellfound.com/jobs/2"},
			}},
			{Board: "Indeed", URL: "https://in.indeed.com/jobs", Jobs: []extract.Candidate{}, Error: "net::ERR_TIMED_OUT"},
		},
		MessageID: "<abc@example.com>",
	}

	id, err := o.Record(run)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	second, err := o.Record(Run{StartedAt: run.StartedAt, SendError: "535 auth failed"})
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
	require.NoError(t, o.Cleanup())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var startedAt, messageID string
	require.NoError(t, db.QueryRow("SELECT started_at, message_id FROM runs WHERE id = ?", id).Scan(&startedAt, &messageID))
	assert.Equal(t, "2026-10-19T03:30:00Z", startedAt)
	assert.Equal(t, "<abc@example.com>", messageID)

	var sendErr string
	require.NoError(t, db.QueryRow("SELECT send_error FROM runs WHERE id = ?", second).Scan(&sendErr))
	assert.Equal(t, "535 auth failed", sendErr)

	var boardErr string
	require.NoError(t, db.QueryRow("SELECT error FROM boards WHERE run_id = ? AND board = 'Indeed'", id).Scan(&boardErr))
	assert.Equal(t, "net::ERR_TIMED_OUT", boardErr)

	rows, err := db.Query("SELECT href FROM candidates WHERE run_id = ? ORDER BY board_position, position", id)
	require.NoError(t, err)
	defer rows.Close()
	var hrefs []string
	for rows.Next() {
		var h string
		require.NoError(t, rows.Scan(&h))
		hrefs = append(hrefs, h)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"https://wellfound.com/jobs/1", "https://wellfound.com/jobs/2"}, hrefs)
}

func TestInit_RequiresDatabase(t *testing.T) {
	o := &SqliteOutput{}
	require.Error(t, o.Init())
	assert.NoError(t, o.Cleanup())
}

func TestRecord_BeforeInit(t *testing.T) {
	_, err := (&SqliteOutput{Database: "unused.db"}).Record(Run{})
	require.Error(t, err)
}
