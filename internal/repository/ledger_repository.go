package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/modular-erp-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository defines the interface for chart of accounts and journal data access
type LedgerRepository interface {
	// Transaction runs fn against a repository bound to a single database transaction
	Transaction(ctx context.Context, fn func(tx LedgerRepository) error) error

	CreateAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindAccountByCode(ctx context.Context, code string) (*models.Account, error)
	FindAccountsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error)
	ListAccounts(ctx context.Context, query *AccountQuery) ([]models.Account, int64, error)
	AccountHasLines(ctx context.Context, id uuid.UUID) (bool, error)
	PostedTotals(ctx context.Context, accountID uuid.UUID) (models.AccountTotals, error)
	PostedTotalsByAccount(ctx context.Context) (map[uuid.UUID]models.AccountTotals, error)
	PostedLines(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]models.LedgerLine, error)

	NextSequence(ctx context.Context, name string) (int64, error)
	CreateEntry(ctx context.Context, entry *models.JournalEntry) error
	UpdateEntry(ctx context.Context, entry *models.JournalEntry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	FindEntryByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	LockEntry(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	ListEntries(ctx context.Context, query *JournalQuery) ([]models.JournalEntry, int64, error)
	ListDraftEntryIDs(ctx context.Context) ([]uuid.UUID, error)

	CreateLine(ctx context.Context, line *models.JournalEntryLine) error
	UpdateLine(ctx context.Context, line *models.JournalEntryLine) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	FindLineByID(ctx context.Context, id uuid.UUID) (*models.JournalEntryLine, error)
	FindLinesByEntry(ctx context.Context, entryID uuid.UUID) ([]models.JournalEntryLine, error)
	MaxLineNumber(ctx context.Context, entryID uuid.UUID) (int, error)
	SumLines(ctx context.Context, entryID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)
}

// AccountQuery extends ListQuery with chart-of-accounts scopes
type AccountQuery struct {
	*ListQuery
	ActiveOnly bool
	Type       string
	SubType    string
	RootOnly   bool
	LeafOnly   bool
	ParentID   *uuid.UUID
}

// JournalQuery extends ListQuery with journal entry filters
type JournalQuery struct {
	*ListQuery
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	AccountID *uuid.UUID
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Transaction(ctx context.Context, fn func(tx LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

// Accounts

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Omit("Parent", "Children").Save(account).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id).Error
}

func (r *ledgerRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *ledgerRepository) FindAccountByCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *ledgerRepository) FindAccountsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if len(ids) == 0 {
		return accounts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error
	return accounts, err
}

func (r *ledgerRepository) ListAccounts(ctx context.Context, query *AccountQuery) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Account{})

	if query.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	if query.SubType != "" {
		db = db.Where("sub_type = ?", query.SubType)
	}
	if query.RootOnly {
		db = db.Where("parent_id IS NULL")
	}
	if query.LeafOnly {
		db = db.Where("NOT EXISTS (SELECT 1 FROM accounts c WHERE c.parent_id = accounts.id)")
	}
	if query.ParentID != nil {
		db = db.Where("parent_id = ?", *query.ParentID)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("code ILIKE ? OR name ILIKE ?", search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(orderClause(query.ListQuery, "code"))
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&accounts).Error
	return accounts, total, err
}

func (r *ledgerRepository) AccountHasLines(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryLine{}).
		Where("account_id = ?", id).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// postedLines scopes journal entry lines to posted entries
func (r *ledgerRepository) postedLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.JournalEntryLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_entry_lines.journal_entry_id").
		Where("journal_entries.status = ?", models.JournalStatusPosted)
}

func (r *ledgerRepository) PostedTotals(ctx context.Context, accountID uuid.UUID) (models.AccountTotals, error) {
	var result struct {
		DebitTotal  decimal.Decimal
		CreditTotal decimal.Decimal
	}
	err := r.postedLines(ctx).
		Select("COALESCE(SUM(journal_entry_lines.debit_amount), 0) AS debit_total, COALESCE(SUM(journal_entry_lines.credit_amount), 0) AS credit_total").
		Where("journal_entry_lines.account_id = ?", accountID).
		Scan(&result).Error
	return models.AccountTotals{
		AccountID:   accountID,
		DebitTotal:  result.DebitTotal,
		CreditTotal: result.CreditTotal,
	}, err
}

func (r *ledgerRepository) PostedTotalsByAccount(ctx context.Context) (map[uuid.UUID]models.AccountTotals, error) {
	var rows []models.AccountTotals
	err := r.postedLines(ctx).
		Select("journal_entry_lines.account_id AS account_id, COALESCE(SUM(journal_entry_lines.debit_amount), 0) AS debit_total, COALESCE(SUM(journal_entry_lines.credit_amount), 0) AS credit_total").
		Group("journal_entry_lines.account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]models.AccountTotals, len(rows))
	for _, row := range rows {
		totals[row.AccountID] = row
	}
	return totals, nil
}

func (r *ledgerRepository) PostedLines(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]models.LedgerLine, error) {
	var lines []models.LedgerLine
	db := r.postedLines(ctx).
		Select(`journal_entries.id AS entry_id, journal_entries.entry_number, journal_entries.entry_date,
			COALESCE(journal_entry_lines.description, journal_entries.description) AS description,
			journal_entry_lines.debit_amount, journal_entry_lines.credit_amount`).
		Where("journal_entry_lines.account_id = ?", accountID)
	if from != nil {
		db = db.Where("journal_entries.entry_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("journal_entries.entry_date <= ?", *to)
	}
	err := db.Order("journal_entries.entry_date ASC, journal_entries.entry_number ASC, journal_entry_lines.line_number ASC").
		Scan(&lines).Error
	return lines, err
}

// Journal entries

// NextSequence atomically increments and returns the named counter.
// The upsert takes a row lock, so concurrent callers never observe the same value.
func (r *ledgerRepository) NextSequence(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO ledger_sequences (name, value, updated_at) VALUES (?, 1, NOW())
		ON CONFLICT (name) DO UPDATE SET value = ledger_sequences.value + 1, updated_at = NOW()
		RETURNING value`, name).Scan(&value).Error
	return value, err
}

func (r *ledgerRepository) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) UpdateEntry(ctx context.Context, entry *models.JournalEntry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(entry).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.JournalEntry{}, "id = ?", id).Error
}

func (r *ledgerRepository) FindEntryByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Preload("Lines.Account").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LockEntry loads the entry header with SELECT ... FOR UPDATE.
// Only meaningful inside Transaction.
func (r *ledgerRepository) LockEntry(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, query *JournalQuery) ([]models.JournalEntry, int64, error) {
	var entries []models.JournalEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.JournalEntry{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.StartDate != nil {
		db = db.Where("entry_date >= ?", *query.StartDate)
	}
	if query.EndDate != nil {
		db = db.Where("entry_date <= ?", *query.EndDate)
	}
	if query.AccountID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM journal_entry_lines l WHERE l.journal_entry_id = journal_entries.id AND l.account_id = ?)", *query.AccountID)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("entry_number ILIKE ? OR description ILIKE ? OR reference ILIKE ?", search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(orderClause(query.ListQuery, "entry_date DESC, entry_number DESC"))
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepository) ListDraftEntryIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("status = ?", models.JournalStatusDraft).
		Pluck("id", &ids).Error
	return ids, err
}

// Journal entry lines

func (r *ledgerRepository) CreateLine(ctx context.Context, line *models.JournalEntryLine) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) UpdateLine(ctx context.Context, line *models.JournalEntryLine) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(line).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ledgerRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.JournalEntryLine{}, "id = ?", id).Error
}

func (r *ledgerRepository) FindLineByID(ctx context.Context, id uuid.UUID) (*models.JournalEntryLine, error) {
	var line models.JournalEntryLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *ledgerRepository) FindLinesByEntry(ctx context.Context, entryID uuid.UUID) ([]models.JournalEntryLine, error) {
	var lines []models.JournalEntryLine
	err := r.db.WithContext(ctx).
		Where("journal_entry_id = ?", entryID).
		Preload("Account").
		Order("line_number ASC").
		Find(&lines).Error
	return lines, err
}

func (r *ledgerRepository) MaxLineNumber(ctx context.Context, entryID uuid.UUID) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryLine{}).
		Select("COALESCE(MAX(line_number), 0)").
		Where("journal_entry_id = ?", entryID).
		Scan(&highest).Error
	return highest, err
}

func (r *ledgerRepository) SumLines(ctx context.Context, entryID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		Debit  decimal.Decimal
		Credit decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryLine{}).
		Select("COALESCE(SUM(debit_amount), 0) AS debit, COALESCE(SUM(credit_amount), 0) AS credit").
		Where("journal_entry_id = ?", entryID).
		Scan(&result).Error
	return result.Debit, result.Credit, err
}
