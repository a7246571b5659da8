package repositories

import (
	"path/filepath"
	"testing"

	"leadflow/config"
	"leadflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScratchpad(t *testing.T) *SQLiteScratchpadRepository {
	t.Helper()
	db, err := config.OpenScratchpad(filepath.Join(t.TempDir(), "scratchpad.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteScratchpadRepository(db)
}

func TestSignalRoundTrip(t *testing.T) {
	repo := newTestScratchpad(t)

	loaded, err := repo.LoadSignal()
	require.NoError(t, err)
	assert.Nil(t, loaded, "empty scratchpad has no signal")

	signal := &models.WorkflowSignal{
		Trigger:        true,
		SubjectID:      "lead-7",
		ChainDirective: models.ChainOpenEditAfterAssistant,
		IssuedAt:       "2026-09-01T10:00:00.000000001Z",
	}
	require.NoError(t, repo.SaveSignal(signal))

	loaded, err = repo.LoadSignal()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, signal, loaded)
}

func TestSaveSignalLastWriterWins(t *testing.T) {
	repo := newTestScratchpad(t)

	require.NoError(t, repo.SaveSignal(&models.WorkflowSignal{
		Trigger:        true,
		SubjectID:      "lead-1",
		ChainDirective: models.ChainOpenEditAfterAssistant,
		IssuedAt:       "t1",
	}))
	require.NoError(t, repo.SaveSignal(&models.WorkflowSignal{
		Trigger:        true,
		ChainDirective: models.ChainNone,
		IssuedAt:       "t2",
	}))

	loaded, err := repo.LoadSignal()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "t2", loaded.IssuedAt)
	assert.Equal(t, models.ChainNone, loaded.ChainDirective)
	assert.Empty(t, loaded.SubjectID)
}

func TestClearSignal(t *testing.T) {
	repo := newTestScratchpad(t)

	require.NoError(t, repo.SaveSignal(&models.WorkflowSignal{
		Trigger:        true,
		ChainDirective: models.ChainNone,
		IssuedAt:       "t1",
	}))
	require.NoError(t, repo.ClearSignal())

	loaded, err := repo.LoadSignal()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing an already empty scratchpad is fine.
	require.NoError(t, repo.ClearSignal())
}

func TestMarkProcessedIsFreshOnlyOnce(t *testing.T) {
	repo := newTestScratchpad(t)

	fresh, err := repo.MarkProcessed("lead-list", "t1")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.MarkProcessed("lead-list", "t1")
	require.NoError(t, err)
	assert.False(t, fresh, "second mark for the same consumer and signal is not fresh")

	// A different consumer or a different signal is independent.
	fresh, err = repo.MarkProcessed("edit-modal", "t1")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.MarkProcessed("lead-list", "t2")
	require.NoError(t, err)
	assert.True(t, fresh)

	processed, err := repo.IsProcessed("lead-list", "t1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = repo.IsProcessed("lead-list", "t9")
	require.NoError(t, err)
	assert.False(t, processed)
}
