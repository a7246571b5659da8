package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const scratchpadSchema = `
CREATE TABLE IF NOT EXISTS workflow_signal (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	trigger_flag INTEGER NOT NULL,
	subject_id TEXT,
	chain_directive TEXT NOT NULL,
	issued_at TEXT NOT NULL,
	written_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS signal_marks (
	consumer TEXT NOT NULL,
	issued_at TEXT NOT NULL,
	marked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(consumer, issued_at)
);`

// OpenScratchpad opens the local coordination database. The scratchpad holds
// workflow coordination metadata only; leads and conversations live in the
// remote CRM and are never stored here.
func OpenScratchpad(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening scratchpad: %v", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to scratchpad: %v", err)
	}

	if _, err = db.Exec(scratchpadSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating scratchpad schema: %v", err)
	}

	return db, nil
}
