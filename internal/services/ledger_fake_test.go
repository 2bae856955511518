package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"gorm.io/gorm"
)

// fakeLedgerRepo is an in-memory LedgerRepository
type fakeLedgerRepo struct {
	mu        sync.Mutex
	accounts  map[uuid.UUID]models.Account
	entries   map[uuid.UUID]models.JournalEntry
	lines     map[uuid.UUID]models.JournalEntryLine
	sequences map[string]int64

	entryConflicts int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		accounts:  make(map[uuid.UUID]models.Account),
		entries:   make(map[uuid.UUID]models.JournalEntry),
		lines:     make(map[uuid.UUID]models.JournalEntryLine),
		sequences: make(map[string]int64),
	}
}

func (f *fakeLedgerRepo) Transaction(ctx context.Context, fn func(tx repository.LedgerRepository) error) error {
	return fn(f)
}

func (f *fakeLedgerRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Code == account.Code {
			return repository.ErrConflict
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeLedgerRepo) UpdateAccount(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.accounts {
		if id != account.ID && a.Code == account.Code {
			return repository.ErrConflict
		}
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeLedgerRepo) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		delete(f.accounts, current)
		for childID, a := range f.accounts {
			if a.ParentID != nil && *a.ParentID == current {
				queue = append(queue, childID)
			}
		}
	}
	return nil
}

func (f *fakeLedgerRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeLedgerRepo) FindAccountByCode(ctx context.Context, code string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Code == code {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepo) FindAccountsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListAccounts(ctx context.Context, query *repository.AccountQuery) ([]models.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hasChildren := make(map[uuid.UUID]bool)
	for _, a := range f.accounts {
		if a.ParentID != nil {
			hasChildren[*a.ParentID] = true
		}
	}

	var out []models.Account
	for _, a := range f.accounts {
		switch {
		case query.ActiveOnly && !a.IsActive:
		case query.Type != "" && a.Type != query.Type:
		case query.SubType != "" && a.SubType != query.SubType:
		case query.RootOnly && a.ParentID != nil:
		case query.LeafOnly && hasChildren[a.ID]:
		case query.ParentID != nil && (a.ParentID == nil || *a.ParentID != *query.ParentID):
		default:
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, int64(len(out)), nil
}

func (f *fakeLedgerRepo) AccountHasLines(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lines {
		if l.AccountID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedgerRepo) postedLines(accountID uuid.UUID) []models.JournalEntryLine {
	var out []models.JournalEntryLine
	for _, l := range f.lines {
		if l.AccountID != accountID {
			continue
		}
		if e, ok := f.entries[l.JournalEntryID]; ok && e.Status == models.JournalStatusPosted {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeLedgerRepo) PostedTotals(ctx context.Context, accountID uuid.UUID) (models.AccountTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	debit, credit := models.SumLines(f.postedLines(accountID))
	return models.AccountTotals{AccountID: accountID, DebitTotal: debit, CreditTotal: credit}, nil
}

func (f *fakeLedgerRepo) PostedTotalsByAccount(ctx context.Context) (map[uuid.UUID]models.AccountTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]models.AccountTotals)
	for id := range f.accounts {
		debit, credit := models.SumLines(f.postedLines(id))
		out[id] = models.AccountTotals{AccountID: id, DebitTotal: debit, CreditTotal: credit}
	}
	return out, nil
}

func (f *fakeLedgerRepo) PostedLines(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]models.LedgerLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type row struct {
		line  models.JournalEntryLine
		entry models.JournalEntry
	}
	var rows []row
	for _, l := range f.postedLines(accountID) {
		e := f.entries[l.JournalEntryID]
		if from != nil && e.EntryDate.Before(*from) {
			continue
		}
		if to != nil && e.EntryDate.After(*to) {
			continue
		}
		rows = append(rows, row{line: l, entry: e})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entry.EntryDate.Equal(rows[j].entry.EntryDate) {
			return rows[i].entry.EntryDate.Before(rows[j].entry.EntryDate)
		}
		if rows[i].entry.EntryNumber != rows[j].entry.EntryNumber {
			return rows[i].entry.EntryNumber < rows[j].entry.EntryNumber
		}
		return rows[i].line.LineNumber < rows[j].line.LineNumber
	})

	out := make([]models.LedgerLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.LedgerLine{
			EntryID:      r.entry.ID,
			EntryNumber:  r.entry.EntryNumber,
			EntryDate:    r.entry.EntryDate,
			Description:  r.entry.Description,
			DebitAmount:  r.line.DebitAmount,
			CreditAmount: r.line.CreditAmount,
		})
	}
	return out, nil
}

func (f *fakeLedgerRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sequences[name]++
	return f.sequences[name], nil
}

func (f *fakeLedgerRepo) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entryConflicts > 0 {
		f.entryConflicts--
		return repository.ErrConflict
	}
	for _, e := range f.entries {
		if e.EntryNumber == entry.EntryNumber {
			return repository.ErrConflict
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	stored.Lines = nil
	f.entries[entry.ID] = stored
	return nil
}

func (f *fakeLedgerRepo) UpdateEntry(ctx context.Context, entry *models.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *entry
	stored.Lines = nil
	f.entries[entry.ID] = stored
	return nil
}

func (f *fakeLedgerRepo) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
	for lineID, l := range f.lines {
		if l.JournalEntryID == id {
			delete(f.lines, lineID)
		}
	}
	return nil
}

func (f *fakeLedgerRepo) entryLines(entryID uuid.UUID) []models.JournalEntryLine {
	var out []models.JournalEntryLine
	for _, l := range f.lines {
		if l.JournalEntryID == entryID {
			if a, ok := f.accounts[l.AccountID]; ok {
				l.Account = &a
			}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}

func (f *fakeLedgerRepo) FindEntryByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	e.Lines = f.entryLines(id)
	return &e, nil
}

func (f *fakeLedgerRepo) LockEntry(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (f *fakeLedgerRepo) ListEntries(ctx context.Context, query *repository.JournalQuery) ([]models.JournalEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JournalEntry
	for _, e := range f.entries {
		if query.Status != "" && e.Status != query.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryNumber > out[j].EntryNumber })
	return out, int64(len(out)), nil
}

func (f *fakeLedgerRepo) ListDraftEntryIDs(ctx context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, e := range f.entries {
		if e.Status == models.JournalStatusDraft {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeLedgerRepo) CreateLine(ctx context.Context, line *models.JournalEntryLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lines {
		if l.JournalEntryID == line.JournalEntryID && l.LineNumber == line.LineNumber {
			return repository.ErrConflict
		}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	stored := *line
	stored.Account = nil
	f.lines[line.ID] = stored
	return nil
}

func (f *fakeLedgerRepo) UpdateLine(ctx context.Context, line *models.JournalEntryLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, l := range f.lines {
		if id != line.ID && l.JournalEntryID == line.JournalEntryID && l.LineNumber == line.LineNumber {
			return repository.ErrConflict
		}
	}
	stored := *line
	stored.Account = nil
	f.lines[line.ID] = stored
	return nil
}

func (f *fakeLedgerRepo) DeleteLine(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, id)
	return nil
}

func (f *fakeLedgerRepo) FindLineByID(ctx context.Context, id uuid.UUID) (*models.JournalEntryLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (f *fakeLedgerRepo) FindLinesByEntry(ctx context.Context, entryID uuid.UUID) ([]models.JournalEntryLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entryLines(entryID), nil
}

func (f *fakeLedgerRepo) MaxLineNumber(ctx context.Context, entryID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.NextLineNumber(f.entryLines(entryID)) - 1, nil
}

func (f *fakeLedgerRepo) SumLines(ctx context.Context, entryID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	debit, credit := models.SumLines(f.entryLines(entryID))
	return debit, credit, nil
}

// setEntryTotals overwrites cached totals to simulate drift
func (f *fakeLedgerRepo) setEntryTotals(id uuid.UUID, debit, credit string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[id]
	e.TotalDebit = decimal.RequireFromString(debit)
	e.TotalCredit = decimal.RequireFromString(credit)
	f.entries[id] = e
}

// fakeActivityRepo records activity logs in memory
type fakeActivityRepo struct {
	repository.ActivityLogRepository
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (f *fakeActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.EventType)
	}
	return out
}
