package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountTotals holds posted debit and credit sums for one account
type AccountTotals struct {
	AccountID   uuid.UUID       `json:"account_id"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
}

// AccountBalance is the computed balance of an account
type AccountBalance struct {
	AccountID      uuid.UUID       `json:"account_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	NormalBalance  string          `json:"normal_balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	DebitTotal     decimal.Decimal `json:"debit_total"`
	CreditTotal    decimal.Decimal `json:"credit_total"`
	Balance        decimal.Decimal `json:"balance"`
}

// TrialBalanceRow is one account line of the trial balance
type TrialBalanceRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account with its balance on its debit or credit column
type TrialBalance struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
}

// IsBalanced returns true if both columns sum to the same amount
func (t *TrialBalance) IsBalanced() bool {
	return t.TotalDebit.Equal(t.TotalCredit)
}

// NewTrialBalance places each account balance on its natural column.
// A debit-normal account with a negative balance moves to the credit column
// and vice versa.
func NewTrialBalance(accounts []Account, totals map[uuid.UUID]AccountTotals, now time.Time) *TrialBalance {
	tb := &TrialBalance{GeneratedAt: now, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for i := range accounts {
		a := &accounts[i]
		t := totals[a.ID]
		balance := ComputeBalance(a.NormalBalance, a.OpeningBalance, t.DebitTotal, t.CreditTotal)
		if balance.IsZero() {
			continue
		}
		row := TrialBalanceRow{AccountID: a.ID, Code: a.Code, Name: a.Name, Type: a.Type, Debit: decimal.Zero, Credit: decimal.Zero}
		onDebit := a.NormalBalance == NormalBalanceDebit
		if balance.IsNegative() {
			onDebit = !onDebit
			balance = balance.Abs()
		}
		if onDebit {
			row.Debit = balance
			tb.TotalDebit = tb.TotalDebit.Add(balance)
		} else {
			row.Credit = balance
			tb.TotalCredit = tb.TotalCredit.Add(balance)
		}
		tb.Rows = append(tb.Rows, row)
	}
	return tb
}

// LedgerLine is one posted line in an account's general ledger
type LedgerLine struct {
	EntryID      uuid.UUID       `json:"entry_id"`
	EntryNumber  string          `json:"entry_number"`
	EntryDate    time.Time       `json:"entry_date"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Running      decimal.Decimal `json:"running_balance"`
}

// ApplyRunningBalance fills Running on each line, starting from the opening balance
func ApplyRunningBalance(normalBalance string, opening decimal.Decimal, lines []LedgerLine) {
	running := opening
	for i := range lines {
		delta := lines[i].DebitAmount.Sub(lines[i].CreditAmount)
		if normalBalance == NormalBalanceCredit {
			delta = delta.Neg()
		}
		running = running.Add(delta)
		lines[i].Running = running
	}
}

// GeneralLedger is the posted activity of one account over a period
type GeneralLedger struct {
	Account     *Account        `json:"account"`
	From        *time.Time      `json:"from"`
	To          *time.Time      `json:"to"`
	Opening     decimal.Decimal `json:"opening_balance"`
	Lines       []LedgerLine    `json:"lines"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Closing     decimal.Decimal `json:"closing_balance"`
}

// NewGeneralLedger applies running balances from opening and sums both columns
func NewGeneralLedger(account *Account, from, to *time.Time, opening decimal.Decimal, lines []LedgerLine) *GeneralLedger {
	ApplyRunningBalance(account.NormalBalance, opening, lines)
	gl := &GeneralLedger{
		Account: account, From: from, To: to, Opening: opening, Lines: lines,
		TotalDebit: decimal.Zero, TotalCredit: decimal.Zero, Closing: opening,
	}
	for _, l := range lines {
		gl.TotalDebit = gl.TotalDebit.Add(l.DebitAmount)
		gl.TotalCredit = gl.TotalCredit.Add(l.CreditAmount)
	}
	if len(lines) > 0 {
		gl.Closing = lines[len(lines)-1].Running
	}
	return gl
}
