package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/statemachine"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"go.uber.org/multierr"
)

// entryNumberAttempts bounds retries after an entry number collision
const entryNumberAttempts = 3

// EntryDateLayout is the wire format of journal entry dates
const EntryDateLayout = "2006-01-02"

// JournalService manages journal entries and their lines
type JournalService struct {
	repo     repository.LedgerRepository
	auditSvc *AuditService
	reversal ReversalStrategy
	now      func() time.Time
}

// NewJournalService creates a new journal service
func NewJournalService(repo repository.LedgerRepository, auditSvc *AuditService, reversal ReversalStrategy) *JournalService {
	if reversal == nil {
		reversal = FlipReversal{}
	}
	return &JournalService{
		repo:     repo,
		auditSvc: auditSvc,
		reversal: reversal,
		now:      time.Now,
	}
}

// JournalLineInput holds the attributes of a journal entry line
type JournalLineInput struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	Description  *string         `json:"description"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	LineNumber   *int            `json:"line_number" binding:"omitempty,min=1"`
}

// JournalEntryInput holds a journal entry header and its initial lines
type JournalEntryInput struct {
	EntryDate   string             `json:"entry_date" binding:"required,datetime=2006-01-02"`
	Description string             `json:"description" binding:"required,max=1000"`
	Reference   *string            `json:"reference"`
	Lines       []JournalLineInput `json:"lines" binding:"dive"`
}

// JournalEntryUpdate holds the optional header attributes of a draft entry
type JournalEntryUpdate struct {
	EntryDate   *string `json:"entry_date" binding:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Reference   *string `json:"reference"`
}

// IntegrityReport summarises a totals recomputation sweep
type IntegrityReport struct {
	Checked  int      `json:"checked"`
	Repaired int      `json:"repaired"`
	Drifted  []string `json:"drifted"`
}

func parseEntryDate(value string) (time.Time, error) {
	date, err := time.Parse(EntryDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: entry_date must be formatted as YYYY-MM-DD", ErrInvalidInput)
	}
	return date, nil
}

// Create stores a draft entry with its lines in one transaction and computes totals once
func (s *JournalService) Create(ctx context.Context, input JournalEntryInput) (*models.JournalEntry, error) {
	date, err := parseEntryDate(input.EntryDate)
	if err != nil {
		return nil, err
	}

	var entry *models.JournalEntry
	err = s.withEntryNumberRetry(ctx, func(tx repository.LedgerRepository) error {
		if err := validateLines(ctx, tx, input.Lines); err != nil {
			return err
		}

		entry = &models.JournalEntry{
			EntryDate:   date,
			Description: strings.TrimSpace(input.Description),
			Reference:   input.Reference,
			Status:      models.JournalStatusDraft,
			CreatedBy:   actorID(ctx),
		}
		lines := buildLines(input.Lines)
		if err := createEntry(ctx, tx, entry, lines); err != nil {
			return err
		}

		entry, err = tx.FindEntryByID(ctx, entry.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogCreated(ctx, Subject{Type: "journal_entry", ID: entry.ID}, entry.ToResponse())
	return entry, nil
}

// Update changes the header of a draft entry
func (s *JournalService) Update(ctx context.Context, id uuid.UUID, input JournalEntryUpdate) (*models.JournalEntry, error) {
	var before models.JournalEntryResponse
	var entry *models.JournalEntry

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		locked, err := lockDraft(ctx, tx, id)
		if err != nil {
			return err
		}
		before = locked.ToResponse()

		if input.EntryDate != nil {
			date, err := parseEntryDate(*input.EntryDate)
			if err != nil {
				return err
			}
			locked.EntryDate = date
		}
		if input.Description != nil {
			locked.Description = strings.TrimSpace(*input.Description)
		}
		if input.Reference != nil {
			locked.Reference = input.Reference
		}
		if err := tx.UpdateEntry(ctx, locked); err != nil {
			return err
		}

		entry, err = tx.FindEntryByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogUpdated(ctx, Subject{Type: "journal_entry", ID: id}, before, entry.ToResponse())
	return entry, nil
}

// Delete removes a draft entry and its lines
func (s *JournalService) Delete(ctx context.Context, id uuid.UUID) error {
	var entry *models.JournalEntry

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		var err error
		entry, err = tx.LockEntry(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if !entry.IsDraft() {
			return fmt.Errorf("%w: only draft entries can be deleted", ErrInvalidState)
		}
		return tx.DeleteEntry(ctx, id)
	})
	if err != nil {
		return err
	}

	s.auditSvc.LogDeleted(ctx, Subject{Type: "journal_entry", ID: id}, entry.ToResponse())
	return nil
}

// Get returns an entry with its lines
func (s *JournalService) Get(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	entry, err := s.repo.FindEntryByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

// List returns entry headers matching the query
func (s *JournalService) List(ctx context.Context, query *repository.JournalQuery) ([]models.JournalEntry, int64, error) {
	if query.ListQuery == nil {
		query.ListQuery = repository.NewListQuery()
	}
	return s.repo.ListEntries(ctx, query)
}

// AddLine appends a line to a draft entry and recomputes its totals
func (s *JournalService) AddLine(ctx context.Context, entryID uuid.UUID, input JournalLineInput) (*models.JournalEntryLine, error) {
	var line *models.JournalEntryLine

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		entry, err := lockDraft(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if err := validateLines(ctx, tx, []JournalLineInput{input}); err != nil {
			return err
		}

		line = &models.JournalEntryLine{
			JournalEntryID: entryID,
			AccountID:      input.AccountID,
			Description:    input.Description,
			DebitAmount:    input.DebitAmount.Round(models.MoneyPlaces),
			CreditAmount:   input.CreditAmount.Round(models.MoneyPlaces),
		}
		if input.LineNumber != nil {
			line.LineNumber = *input.LineNumber
		} else {
			highest, err := tx.MaxLineNumber(ctx, entryID)
			if err != nil {
				return err
			}
			line.LineNumber = highest + 1
		}

		if err := tx.CreateLine(ctx, line); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: line number %d is already used", ErrDuplicate, line.LineNumber)
			}
			return err
		}
		return recalculate(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogCreated(ctx, Subject{Type: "journal_entry_line", ID: line.ID}, line.ToResponse())
	return line, nil
}

// UpdateLine changes a line of a draft entry and recomputes its totals
func (s *JournalService) UpdateLine(ctx context.Context, entryID, lineID uuid.UUID, input JournalLineInput) (*models.JournalEntryLine, error) {
	var before models.JournalEntryLineResponse
	var line *models.JournalEntryLine

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		entry, err := lockDraft(ctx, tx, entryID)
		if err != nil {
			return err
		}
		line, err = findLine(ctx, tx, entryID, lineID)
		if err != nil {
			return err
		}
		if err := validateLines(ctx, tx, []JournalLineInput{input}); err != nil {
			return err
		}
		before = line.ToResponse()

		line.AccountID = input.AccountID
		line.Description = input.Description
		line.DebitAmount = input.DebitAmount.Round(models.MoneyPlaces)
		line.CreditAmount = input.CreditAmount.Round(models.MoneyPlaces)
		if input.LineNumber != nil {
			line.LineNumber = *input.LineNumber
		}

		if err := tx.UpdateLine(ctx, line); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: line number %d is already used", ErrDuplicate, line.LineNumber)
			}
			return err
		}
		return recalculate(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogUpdated(ctx, Subject{Type: "journal_entry_line", ID: line.ID}, before, line.ToResponse())
	return line, nil
}

// RemoveLine deletes a line of a draft entry and recomputes its totals
func (s *JournalService) RemoveLine(ctx context.Context, entryID, lineID uuid.UUID) error {
	var line *models.JournalEntryLine

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		entry, err := lockDraft(ctx, tx, entryID)
		if err != nil {
			return err
		}
		line, err = findLine(ctx, tx, entryID, lineID)
		if err != nil {
			return err
		}
		if err := tx.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		return recalculate(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	s.auditSvc.LogDeleted(ctx, Subject{Type: "journal_entry_line", ID: lineID}, line.ToResponse())
	return nil
}

// Post moves a balanced draft entry to posted under a row lock.
// The acting user becomes the approver.
func (s *JournalService) Post(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	var entry *models.JournalEntry

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		locked, err := tx.LockEntry(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if locked.IsDraft() {
			debit, credit, err := tx.SumLines(ctx, id)
			if err != nil {
				return err
			}
			locked.ApplyTotals(debit, credit)
		}

		if err := statemachine.NewJournalEntryFSM(locked).Post(ctx, actorID(ctx), s.now()); err != nil {
			return err
		}
		if err := tx.UpdateEntry(ctx, locked); err != nil {
			return err
		}

		entry, err = tx.FindEntryByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, models.ActivityPosted,
		fmt.Sprintf("Posted journal entry %s", entry.EntryNumber),
		&Subject{Type: "journal_entry", ID: entry.ID},
		map[string]any{"total_debit": entry.TotalDebit.StringFixed(2), "total_credit": entry.TotalCredit.StringFixed(2)})
	return entry, nil
}

// Reverse reverses a posted entry using the configured strategy.
// The compensating entry is returned when the strategy creates one.
func (s *JournalService) Reverse(ctx context.Context, id uuid.UUID) (*models.JournalEntry, *models.JournalEntry, error) {
	var entry, compensating *models.JournalEntry

	err := s.withEntryNumberRetry(ctx, func(tx repository.LedgerRepository) error {
		locked, err := tx.LockEntry(ctx, id)
		if err != nil {
			return notFound(err)
		}

		compensating, err = s.reversal.Reverse(ctx, tx, locked, s.now())
		if err != nil {
			return err
		}

		entry, err = tx.FindEntryByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	props := map[string]any{"strategy": s.reversal.Name()}
	if compensating != nil {
		props["compensating_entry_id"] = compensating.ID.String()
		props["compensating_entry_number"] = compensating.EntryNumber
	}
	s.auditSvc.Log(ctx, models.ActivityReversed,
		fmt.Sprintf("Reversed journal entry %s", entry.EntryNumber),
		&Subject{Type: "journal_entry", ID: entry.ID},
		props)
	return entry, compensating, nil
}

// CalculateTotals re-sums the lines of an entry and persists the totals
func (s *JournalService) CalculateTotals(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	var entry *models.JournalEntry

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		locked, err := tx.LockEntry(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := recalculate(ctx, tx, locked); err != nil {
			return err
		}
		entry, err = tx.FindEntryByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecalculateDrafts recomputes totals of every draft entry and reports drifted ones
func (s *JournalService) RecalculateDrafts(ctx context.Context) (*IntegrityReport, error) {
	ids, err := s.repo.ListDraftEntryIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{Drifted: []string{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
			entry, err := tx.LockEntry(ctx, id)
			if err != nil {
				return err
			}
			if !entry.IsDraft() {
				return nil
			}
			report.Checked++

			debit, credit, err := tx.SumLines(ctx, id)
			if err != nil {
				return err
			}
			if entry.TotalDebit.Equal(debit) && entry.TotalCredit.Equal(credit) {
				return nil
			}
			entry.ApplyTotals(debit, credit)
			if err := tx.UpdateEntry(ctx, entry); err != nil {
				return err
			}
			report.Repaired++
			report.Drifted = append(report.Drifted, entry.EntryNumber)
			return nil
		})
		if err != nil {
			logger.Warn("Failed to recalculate journal entry totals", "entry_id", id, "error", err)
		}
	}
	return report, nil
}

// MixedLineWarnings lists lines that carry both a debit and a credit amount
func MixedLineWarnings(lines []models.JournalEntryLine) []string {
	var warnings []string
	for i := range lines {
		if lines[i].DebitAmount.IsPositive() && lines[i].CreditAmount.IsPositive() {
			warnings = append(warnings, fmt.Sprintf("line %d has both debit and credit amounts", lines[i].LineNumber))
		}
	}
	return warnings
}

// withEntryNumberRetry runs fn in a transaction, retrying when the generated
// entry number collides with an existing one
func (s *JournalService) withEntryNumberRetry(ctx context.Context, fn func(tx repository.LedgerRepository) error) error {
	var err error
	for attempt := 1; attempt <= entryNumberAttempts; attempt++ {
		err = s.repo.Transaction(ctx, fn)
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		logger.Warn("Journal entry number collision, retrying", "attempt", attempt)
	}
	return fmt.Errorf("%w: could not allocate a journal entry number", err)
}

// nextEntryNumber allocates the next JE number from the atomic sequence
func nextEntryNumber(ctx context.Context, tx repository.LedgerRepository) (string, error) {
	n, err := tx.NextSequence(ctx, models.EntryNumberSequence)
	if err != nil {
		return "", err
	}
	return models.FormatEntryNumber(n), nil
}

// createEntry numbers and inserts a draft entry with its lines, then stores totals
func createEntry(ctx context.Context, tx repository.LedgerRepository, entry *models.JournalEntry, lines []models.JournalEntryLine) error {
	number, err := nextEntryNumber(ctx, tx)
	if err != nil {
		return err
	}
	entry.EntryNumber = number
	entry.Status = models.JournalStatusDraft

	if err := tx.CreateEntry(ctx, entry); err != nil {
		return err
	}
	for i := range lines {
		lines[i].JournalEntryID = entry.ID
		if err := tx.CreateLine(ctx, &lines[i]); err != nil {
			return err
		}
	}

	entry.ApplyTotals(models.SumLines(lines))
	return tx.UpdateEntry(ctx, entry)
}

// buildLines converts inputs to lines, numbering the unnumbered ones after the highest so far
func buildLines(inputs []JournalLineInput) []models.JournalEntryLine {
	lines := make([]models.JournalEntryLine, 0, len(inputs))
	highest := 0
	for _, in := range inputs {
		if in.LineNumber != nil && *in.LineNumber > highest {
			highest = *in.LineNumber
		}
	}
	for _, in := range inputs {
		line := models.JournalEntryLine{
			AccountID:    in.AccountID,
			Description:  in.Description,
			DebitAmount:  in.DebitAmount.Round(models.MoneyPlaces),
			CreditAmount: in.CreditAmount.Round(models.MoneyPlaces),
		}
		if in.LineNumber != nil {
			line.LineNumber = *in.LineNumber
		} else {
			highest++
			line.LineNumber = highest
		}
		lines = append(lines, line)
	}
	return lines
}

// validateLines rejects negative amounts, duplicate line numbers and unknown or inactive accounts
func validateLines(ctx context.Context, tx repository.LedgerRepository, lines []JournalLineInput) error {
	var errs error
	ids := make([]uuid.UUID, 0, len(lines))
	numbers := make(map[int]bool, len(lines))

	for i, line := range lines {
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("line %d: amounts cannot be negative", i+1))
		}
		if line.LineNumber != nil {
			if numbers[*line.LineNumber] {
				errs = multierr.Append(errs, fmt.Errorf("line %d: line number %d is repeated", i+1, *line.LineNumber))
			}
			numbers[*line.LineNumber] = true
		}
		ids = append(ids, line.AccountID)
	}

	accounts, err := tx.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]*models.Account, len(accounts))
	for i := range accounts {
		known[accounts[i].ID] = &accounts[i]
	}
	for i, line := range lines {
		account, ok := known[line.AccountID]
		switch {
		case !ok:
			errs = multierr.Append(errs, fmt.Errorf("line %d: account %s does not exist", i+1, line.AccountID))
		case !account.IsActive:
			errs = multierr.Append(errs, fmt.Errorf("line %d: account %s is inactive", i+1, account.Code))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}
	return nil
}

// lockDraft locks an entry and ensures it is still editable
func lockDraft(ctx context.Context, tx repository.LedgerRepository, id uuid.UUID) (*models.JournalEntry, error) {
	entry, err := tx.LockEntry(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !entry.IsDraft() {
		return nil, ErrEntryLocked
	}
	return entry, nil
}

// findLine loads a line and checks it belongs to the entry
func findLine(ctx context.Context, tx repository.LedgerRepository, entryID, lineID uuid.UUID) (*models.JournalEntryLine, error) {
	line, err := tx.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, notFound(err)
	}
	if line.JournalEntryID != entryID {
		return nil, ErrNotFound
	}
	return line, nil
}

// recalculate re-sums the lines of entry and persists the totals
func recalculate(ctx context.Context, tx repository.LedgerRepository, entry *models.JournalEntry) error {
	debit, credit, err := tx.SumLines(ctx, entry.ID)
	if err != nil {
		return err
	}
	entry.ApplyTotals(debit, credit)
	return tx.UpdateEntry(ctx, entry)
}
