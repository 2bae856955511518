package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/statemachine"
)

// ReversalStrategy reverses a locked, posted journal entry inside a transaction.
// It returns the compensating entry when it creates one.
type ReversalStrategy interface {
	Name() string
	Reverse(ctx context.Context, tx repository.LedgerRepository, entry *models.JournalEntry, now time.Time) (*models.JournalEntry, error)
}

// NewReversalStrategy returns the strategy for a LEDGER_REVERSAL_MODE value
func NewReversalStrategy(mode string) ReversalStrategy {
	if mode == config.ReversalModeCompensate {
		return CompensatingReversal{}
	}
	return FlipReversal{}
}

// FlipReversal voids the entry in place by moving it to reversed
type FlipReversal struct{}

// Name returns the strategy name
func (FlipReversal) Name() string { return config.ReversalModeFlip }

// Reverse flips the entry status to reversed
func (FlipReversal) Reverse(ctx context.Context, tx repository.LedgerRepository, entry *models.JournalEntry, now time.Time) (*models.JournalEntry, error) {
	if err := statemachine.NewJournalEntryFSM(entry).Reverse(ctx, now); err != nil {
		return nil, err
	}
	return nil, tx.UpdateEntry(ctx, entry)
}

// CompensatingReversal flips the entry and posts a mirrored entry that swaps
// every debit and credit, keeping the audit trail in the ledger itself.
type CompensatingReversal struct{}

// Name returns the strategy name
func (CompensatingReversal) Name() string { return config.ReversalModeCompensate }

// Reverse flips the original and posts its mirror
func (CompensatingReversal) Reverse(ctx context.Context, tx repository.LedgerRepository, entry *models.JournalEntry, now time.Time) (*models.JournalEntry, error) {
	if _, err := (FlipReversal{}).Reverse(ctx, tx, entry, now); err != nil {
		return nil, err
	}

	original, err := tx.FindLinesByEntry(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.JournalEntryLine, 0, len(original))
	for _, l := range original {
		lines = append(lines, models.JournalEntryLine{
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			LineNumber:   l.LineNumber,
		})
	}

	reference := entry.EntryNumber
	originalID := entry.ID
	mirror := &models.JournalEntry{
		EntryDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Description:  fmt.Sprintf("Reversal of %s: %s", entry.EntryNumber, entry.Description),
		Reference:    &reference,
		CreatedBy:    actorID(ctx),
		ReversalOfID: &originalID,
	}
	if err := createEntry(ctx, tx, mirror, lines); err != nil {
		return nil, err
	}

	if err := statemachine.NewJournalEntryFSM(mirror).Post(ctx, actorID(ctx), now); err != nil {
		return nil, err
	}
	if err := tx.UpdateEntry(ctx, mirror); err != nil {
		return nil, err
	}
	return mirror, nil
}
