package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/usage"
)

// recordingDB captures the statements the store executes.
type recordingDB struct {
	queries [][]any
	err     error
}

func (r *recordingDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	row := append([]any{query}, args...)
	r.queries = append(r.queries, row)
	return nil, nil
}

func TestUsageStoreRecord(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	store := NewUsageStore(db, slog.Default())

	entry := usage.Entry{
		ID:           uuid.New(),
		TeacherID:    uuid.New(),
		Operation:    "listening_quiz",
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		InputTokens:  100,
		OutputTokens: 250,
		Cost:         0.000165,
		Success:      true,
		Duration:     1200 * time.Millisecond,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Record(context.Background(), entry))

	require.Len(t, db.queries, 1)
	row := db.queries[0]
	assert.Contains(t, row[0].(string), "INSERT INTO usage_logs")
	assert.Equal(t, entry.ID, row[1])
	assert.Equal(t, entry.TeacherID, row[2])
	assert.Equal(t, "listening_quiz", row[3])
	assert.Equal(t, int64(1200), row[11])
}

func TestUsageStoreRecordError(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection reset")
	store := NewUsageStore(&recordingDB{err: dbErr}, slog.Default())

	err := store.Record(context.Background(), usage.Entry{ID: uuid.New()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
}
