package models

// Chain directives describe what should happen after the assistant step of
// the post-conversion workflow completes.
const (
	ChainNone                   = "none"
	ChainOpenEditAfterAssistant = "open_edit_after_assistant"
)

// WorkflowSignal coordinates decoupled console surfaces after a conversion.
// IssuedAt is unique per conversion event; each consumer must act on a given
// IssuedAt at most once, however many times it observes the signal.
type WorkflowSignal struct {
	Trigger        bool   `json:"trigger"`
	SubjectID      string `json:"subject_id"`
	ChainDirective string `json:"chain_directive"`
	IssuedAt       string `json:"issued_at"`
}

// ScratchpadRepository persists the current workflow signal and the
// per-consumer processed marks. It survives a console reload but is not a
// store of record; last writer wins.
type ScratchpadRepository interface {
	SaveSignal(signal *WorkflowSignal) error
	LoadSignal() (*WorkflowSignal, error)
	ClearSignal() error
	// MarkProcessed records that consumer handled issuedAt and reports
	// whether the mark was new.
	MarkProcessed(consumer string, issuedAt string) (bool, error)
	IsProcessed(consumer string, issuedAt string) (bool, error)
}
