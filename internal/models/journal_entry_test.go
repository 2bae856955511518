package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "JE000001", FormatEntryNumber(1))
	assert.Equal(t, "JE012345", FormatEntryNumber(12345))
	assert.Equal(t, "JE1234567", FormatEntryNumber(1234567))
}

func TestParseEntryNumber(t *testing.T) {
	n, err := ParseEntryNumber("JE000042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, bad := range []string{"", "JE", "XX000001", "JE-00001", "JEabc"} {
		_, err := ParseEntryNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestJournalEntry_ApplyTotalsRounds(t *testing.T) {
	e := &JournalEntry{Status: JournalStatusDraft}

	e.ApplyTotals(d("10.005"), d("10.005"))

	assert.Equal(t, "10.01", e.TotalDebit.StringFixed(2))
	assert.True(t, e.IsBalanced())
	assert.True(t, e.MayPost())
}

func TestJournalEntry_StatusPredicates(t *testing.T) {
	draft := &JournalEntry{Status: JournalStatusDraft, TotalDebit: d("5"), TotalCredit: d("4")}
	assert.True(t, draft.IsDraft())
	assert.False(t, draft.MayPost())
	assert.False(t, draft.MayReverse())

	posted := &JournalEntry{Status: JournalStatusPosted}
	assert.True(t, posted.IsPosted())
	assert.True(t, posted.MayReverse())
	assert.False(t, posted.MayPost())
}

func TestJournalEntryLine_Type(t *testing.T) {
	tests := []struct {
		debit, credit string
		want          string
	}{
		{"10", "0", LineTypeDebit},
		{"0", "10", LineTypeCredit},
		{"10", "10", LineTypeMixed},
		{"0", "0", LineTypeMixed},
	}
	for _, tt := range tests {
		l := &JournalEntryLine{DebitAmount: d(tt.debit), CreditAmount: d(tt.credit)}
		assert.Equal(t, tt.want, l.Type(), "debit=%s credit=%s", tt.debit, tt.credit)
	}

	l := &JournalEntryLine{DebitAmount: d("3"), CreditAmount: d("10")}
	assert.Equal(t, "-7", l.Amount().String())
}

func TestNextLineNumber(t *testing.T) {
	assert.Equal(t, 1, NextLineNumber(nil))
	assert.Equal(t, 6, NextLineNumber([]JournalEntryLine{{LineNumber: 2}, {LineNumber: 5}, {LineNumber: 1}}))
}

func TestSumLines(t *testing.T) {
	debit, credit := SumLines([]JournalEntryLine{
		{DebitAmount: d("100.10"), CreditAmount: d("0")},
		{DebitAmount: d("0"), CreditAmount: d("60.05")},
		{DebitAmount: d("0"), CreditAmount: d("40.05")},
	})
	assert.Equal(t, "100.10", debit.StringFixed(2))
	assert.Equal(t, "100.10", credit.StringFixed(2))
}
