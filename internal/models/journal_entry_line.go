package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JournalEntryLine is a single debit or credit row of a journal entry
type JournalEntryLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_journal_entry_lines_entry_number" json:"journal_entry_id"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Description    *string         `gorm:"type:text" json:"description"`
	DebitAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"debit_amount"`
	CreditAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"credit_amount"`
	LineNumber     int             `gorm:"not null;uniqueIndex:idx_journal_entry_lines_entry_number" json:"line_number"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	JournalEntry *JournalEntry `gorm:"foreignKey:JournalEntryID" json:"-"`
	Account      *Account      `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// TableName specifies the table name for JournalEntryLine
func (JournalEntryLine) TableName() string {
	return "journal_entry_lines"
}

// BeforeCreate assigns a UUID when none was provided
func (l *JournalEntryLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Line type constants
const (
	LineTypeDebit  = "debit"
	LineTypeCredit = "credit"
	LineTypeMixed  = "mixed"
)

// Amount returns debit minus credit
func (l *JournalEntryLine) Amount() decimal.Decimal {
	return l.DebitAmount.Sub(l.CreditAmount)
}

// IsDebit returns true if only the debit side carries an amount
func (l *JournalEntryLine) IsDebit() bool {
	return l.DebitAmount.IsPositive() && l.CreditAmount.IsZero()
}

// IsCredit returns true if only the credit side carries an amount
func (l *JournalEntryLine) IsCredit() bool {
	return l.CreditAmount.IsPositive() && l.DebitAmount.IsZero()
}

// Type returns debit, credit or mixed
func (l *JournalEntryLine) Type() string {
	switch {
	case l.IsDebit():
		return LineTypeDebit
	case l.IsCredit():
		return LineTypeCredit
	default:
		return LineTypeMixed
	}
}

// NextLineNumber returns max(line_number)+1 for the given lines
func NextLineNumber(lines []JournalEntryLine) int {
	highest := 0
	for _, l := range lines {
		if l.LineNumber > highest {
			highest = l.LineNumber
		}
	}
	return highest + 1
}

// JournalEntryLineResponse is the JSON response format for journal entry lines
type JournalEntryLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	JournalEntryID uuid.UUID       `json:"journal_entry_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	AccountCode    string          `json:"account_code,omitempty"`
	AccountName    string          `json:"account_name,omitempty"`
	Description    *string         `json:"description"`
	DebitAmount    decimal.Decimal `json:"debit_amount"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	LineNumber     int             `json:"line_number"`
}

// ToResponse converts JournalEntryLine to JournalEntryLineResponse
func (l *JournalEntryLine) ToResponse() JournalEntryLineResponse {
	resp := JournalEntryLineResponse{
		ID:             l.ID,
		JournalEntryID: l.JournalEntryID,
		AccountID:      l.AccountID,
		Description:    l.Description,
		DebitAmount:    l.DebitAmount,
		CreditAmount:   l.CreditAmount,
		Amount:         l.Amount(),
		Type:           l.Type(),
		LineNumber:     l.LineNumber,
	}
	if l.Account != nil {
		resp.AccountCode = l.Account.Code
		resp.AccountName = l.Account.Name
	}
	return resp
}
