package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"leadflow/internal/models"
	"leadflow/internal/utils"
)

// SQLiteScratchpadRepository persists the workflow coordination state: the
// single current signal (last writer wins) and the per-consumer processed
// marks that enforce at-most-once handling.
type SQLiteScratchpadRepository struct {
	db *sql.DB
}

func NewSQLiteScratchpadRepository(db *sql.DB) *SQLiteScratchpadRepository {
	return &SQLiteScratchpadRepository{db: db}
}

func (r *SQLiteScratchpadRepository) SaveSignal(signal *models.WorkflowSignal) error {
	query := `
		INSERT INTO workflow_signal (id, trigger_flag, subject_id, chain_directive, issued_at, written_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			trigger_flag = excluded.trigger_flag,
			subject_id = excluded.subject_id,
			chain_directive = excluded.chain_directive,
			issued_at = excluded.issued_at,
			written_at = CURRENT_TIMESTAMP`

	_, err := r.db.Exec(query,
		utils.BoolToInt(signal.Trigger),
		utils.NullString(signal.SubjectID),
		signal.ChainDirective,
		signal.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving workflow signal: %v", err)
	}
	return nil
}

func (r *SQLiteScratchpadRepository) LoadSignal() (*models.WorkflowSignal, error) {
	query := `
		SELECT trigger_flag, subject_id, chain_directive, issued_at
		FROM workflow_signal
		WHERE id = 1`

	signal := &models.WorkflowSignal{}
	var subjectID sql.NullString
	var trigger int

	err := r.db.QueryRow(query).Scan(&trigger, &subjectID, &signal.ChainDirective, &signal.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading workflow signal: %v", err)
	}

	signal.Trigger = trigger == 1
	signal.SubjectID = subjectID.String
	return signal, nil
}

func (r *SQLiteScratchpadRepository) ClearSignal() error {
	if _, err := r.db.Exec(`DELETE FROM workflow_signal WHERE id = 1`); err != nil {
		return fmt.Errorf("error clearing workflow signal: %v", err)
	}
	return nil
}

// MarkProcessed records that a consumer handled a signal. The unique index
// on (consumer, issued_at) makes repeated observations of the same signal
// collapse into a single action: only the first insert reports true.
func (r *SQLiteScratchpadRepository) MarkProcessed(consumer string, issuedAt string) (bool, error) {
	query := `
		INSERT INTO signal_marks (consumer, issued_at)
		VALUES (?, ?)
		ON CONFLICT(consumer, issued_at) DO NOTHING`

	result, err := r.db.Exec(query, consumer, issuedAt)
	if err != nil {
		// Older sqlite builds report the conflict instead of ignoring it.
		if strings.Contains(err.Error(), "UNIQUE") {
			return false, nil
		}
		return false, fmt.Errorf("error marking signal processed: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %v", err)
	}
	return rows > 0, nil
}

func (r *SQLiteScratchpadRepository) IsProcessed(consumer string, issuedAt string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM signal_marks
			WHERE consumer = ? AND issued_at = ?
		)`, consumer, issuedAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking signal mark: %v", err)
	}
	return exists, nil
}
