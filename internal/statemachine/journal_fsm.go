package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/sjperalta/modular-erp-api/internal/models"
)

// Journal entry transition errors
var (
	ErrNotBalanced = errors.New("journal entry is not balanced: debits must equal credits")
	ErrNotDraft    = errors.New("only draft entries can be posted")
	ErrNotPosted   = errors.New("only posted entries can be reversed")
)

// Journal entry events
const (
	EventPost    = "post"
	EventReverse = "reverse"
)

// JournalEntryFSM wraps a journal entry with its state machine
type JournalEntryFSM struct {
	entry *models.JournalEntry
	fsm   *fsm.FSM
}

// NewJournalEntryFSM creates a new journal entry state machine
func NewJournalEntryFSM(entry *models.JournalEntry) *JournalEntryFSM {
	jfsm := &JournalEntryFSM{
		entry: entry,
	}

	jfsm.fsm = fsm.NewFSM(
		entry.Status,
		fsm.Events{
			// draft → posted (requires balanced totals)
			{Name: EventPost, Src: []string{models.JournalStatusDraft}, Dst: models.JournalStatusPosted},

			// posted → reversed
			{Name: EventReverse, Src: []string{models.JournalStatusPosted}, Dst: models.JournalStatusReversed},
		},
		fsm.Callbacks{},
	)

	return jfsm
}

// Post transitions a balanced draft entry to posted
func (j *JournalEntryFSM) Post(ctx context.Context, approvedBy uuid.UUID, now time.Time) error {
	if !j.entry.IsBalanced() {
		return ErrNotBalanced
	}
	if !j.entry.IsDraft() {
		return ErrNotDraft
	}

	if err := j.fsm.Event(ctx, EventPost); err != nil {
		return fmt.Errorf("failed to post journal entry: %w", err)
	}

	j.entry.Status = j.fsm.Current()
	j.entry.PostedAt = &now
	j.entry.ApprovedBy = &approvedBy
	return nil
}

// Reverse transitions a posted entry to reversed
func (j *JournalEntryFSM) Reverse(ctx context.Context, now time.Time) error {
	if !j.entry.MayReverse() {
		return ErrNotPosted
	}

	if err := j.fsm.Event(ctx, EventReverse); err != nil {
		return fmt.Errorf("failed to reverse journal entry: %w", err)
	}

	j.entry.Status = j.fsm.Current()
	j.entry.ReversedAt = &now
	return nil
}

// Current returns the current state
func (j *JournalEntryFSM) Current() string {
	return j.fsm.Current()
}

// Can checks if a transition is possible
func (j *JournalEntryFSM) Can(event string) bool {
	return j.fsm.Can(event)
}
