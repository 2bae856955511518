package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryNumberPrefix is prepended to every journal entry number
const EntryNumberPrefix = "JE"

// EntryNumberSequence names the ledger_sequences row backing entry numbers
const EntryNumberSequence = "journal_entry_number"

// JournalEntry is the header of a double-entry transaction
type JournalEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EntryNumber  string          `gorm:"size:20;uniqueIndex;not null" json:"entry_number"`
	EntryDate    time.Time       `gorm:"type:date;not null;index:idx_journal_entries_date_status" json:"entry_date"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Reference    *string         `gorm:"type:text" json:"reference"`
	Status       string          `gorm:"size:20;not null;default:draft;index:idx_journal_entries_date_status" json:"status"`
	TotalDebit   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_debit"`
	TotalCredit  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_credit"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	ApprovedBy   *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	PostedAt     *time.Time      `json:"posted_at"`
	ReversedAt   *time.Time      `json:"reversed_at"`
	ReversalOfID *uuid.UUID      `gorm:"type:uuid;index" json:"reversal_of_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Associations
	Lines    []JournalEntryLine `gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Creator  *User              `gorm:"foreignKey:CreatedBy" json:"-"`
	Approver *User              `gorm:"foreignKey:ApprovedBy" json:"-"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// BeforeCreate assigns a UUID and the draft status
func (e *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = JournalStatusDraft
	}
	return nil
}

// Journal entry status constants
const (
	JournalStatusDraft    = "draft"
	JournalStatusPosted   = "posted"
	JournalStatusReversed = "reversed"
)

// IsBalanced returns true if cached debit and credit totals are equal
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit.Equal(e.TotalCredit)
}

// IsDraft returns true if the entry can still be edited
func (e *JournalEntry) IsDraft() bool {
	return e.Status == JournalStatusDraft
}

// IsPosted returns true if the entry counts toward account balances
func (e *JournalEntry) IsPosted() bool {
	return e.Status == JournalStatusPosted
}

// MayPost returns true if the entry is a balanced draft
func (e *JournalEntry) MayPost() bool {
	return e.IsDraft() && e.IsBalanced()
}

// MayReverse returns true if the entry is posted
func (e *JournalEntry) MayReverse() bool {
	return e.IsPosted()
}

// ApplyTotals stores line sums on the entry
func (e *JournalEntry) ApplyTotals(debit, credit decimal.Decimal) {
	e.TotalDebit = debit.Round(2)
	e.TotalCredit = credit.Round(2)
}

// SumLines returns the debit and credit totals of the given lines
func SumLines(lines []JournalEntryLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.DebitAmount)
		credit = credit.Add(l.CreditAmount)
	}
	return debit, credit
}

// FormatEntryNumber renders a sequence value as JE000001
func FormatEntryNumber(n int64) string {
	return fmt.Sprintf("%s%06d", EntryNumberPrefix, n)
}

// ParseEntryNumber extracts the numeric part of an entry number
func ParseEntryNumber(entryNumber string) (int64, error) {
	if !strings.HasPrefix(entryNumber, EntryNumberPrefix) {
		return 0, fmt.Errorf("invalid entry number %q", entryNumber)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(entryNumber, EntryNumberPrefix), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid entry number %q", entryNumber)
	}
	return n, nil
}

// LedgerSequence is an atomic counter row
type LedgerSequence struct {
	Name      string    `gorm:"size:50;primaryKey" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for LedgerSequence
func (LedgerSequence) TableName() string {
	return "ledger_sequences"
}

// JournalEntryResponse is the JSON response format for journal entries
type JournalEntryResponse struct {
	ID           uuid.UUID                  `json:"id"`
	EntryNumber  string                     `json:"entry_number"`
	EntryDate    string                     `json:"entry_date"`
	Description  string                     `json:"description"`
	Reference    *string                    `json:"reference"`
	Status       string                     `json:"status"`
	TotalDebit   decimal.Decimal            `json:"total_debit"`
	TotalCredit  decimal.Decimal            `json:"total_credit"`
	IsBalanced   bool                       `json:"is_balanced"`
	CreatedBy    uuid.UUID                  `json:"created_by"`
	ApprovedBy   *uuid.UUID                 `json:"approved_by"`
	PostedAt     *time.Time                 `json:"posted_at"`
	ReversedAt   *time.Time                 `json:"reversed_at"`
	ReversalOfID *uuid.UUID                 `json:"reversal_of_id"`
	Lines        []JournalEntryLineResponse `json:"lines"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// ToResponse converts JournalEntry to JournalEntryResponse
func (e *JournalEntry) ToResponse() JournalEntryResponse {
	lines := make([]JournalEntryLineResponse, 0, len(e.Lines))
	for i := range e.Lines {
		lines = append(lines, e.Lines[i].ToResponse())
	}
	return JournalEntryResponse{
		ID:           e.ID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate.Format("2006-01-02"),
		Description:  e.Description,
		Reference:    e.Reference,
		Status:       e.Status,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		IsBalanced:   e.IsBalanced(),
		CreatedBy:    e.CreatedBy,
		ApprovedBy:   e.ApprovedBy,
		PostedAt:     e.PostedAt,
		ReversedAt:   e.ReversedAt,
		ReversalOfID: e.ReversalOfID,
		Lines:        lines,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
