package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxAccountDepth bounds every walk up or down the chart of accounts.
const MaxAccountDepth = 32

// Account represents a node in the chart of accounts
type Account struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"not null" json:"name"`
	Description    *string         `gorm:"type:text" json:"description"`
	Type           string          `gorm:"size:20;not null;index:idx_accounts_type_sub_type" json:"type"`
	SubType        string          `gorm:"size:40;not null;index:idx_accounts_type_sub_type" json:"sub_type"`
	ParentID       *uuid.UUID      `gorm:"type:uuid;index:idx_accounts_parent_level" json:"parent_id"`
	Level          int             `gorm:"not null;default:0;index:idx_accounts_parent_level" json:"level"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	IsSystem       bool            `gorm:"not null;default:false" json:"is_system"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"opening_balance"`
	NormalBalance  string          `gorm:"size:10;not null" json:"normal_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Parent   *Account  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Children []Account `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a UUID when none was provided
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.NormalBalance == "" {
		a.NormalBalance = DefaultNormalBalance(a.Type)
	}
	return nil
}

// Account type constants
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeRevenue   = "revenue"
	AccountTypeExpense   = "expense"
)

// Account sub type constants
const (
	SubTypeCurrentAsset      = "current_asset"
	SubTypeFixedAsset        = "fixed_asset"
	SubTypeIntangibleAsset   = "intangible_asset"
	SubTypeCurrentLiability  = "current_liability"
	SubTypeLongTermLiability = "long_term_liability"
	SubTypeOwnerEquity       = "owner_equity"
	SubTypeRetainedEarnings  = "retained_earnings"
	SubTypeOperatingRevenue  = "operating_revenue"
	SubTypeOtherRevenue      = "other_revenue"
	SubTypeOperatingExpense  = "operating_expense"
	SubTypeOtherExpense      = "other_expense"
)

// Normal balance constants
const (
	NormalBalanceDebit  = "debit"
	NormalBalanceCredit = "credit"
)

// AccountTypes lists account types with their display labels
var AccountTypes = map[string]string{
	AccountTypeAsset:     "Asset",
	AccountTypeLiability: "Liability",
	AccountTypeEquity:    "Equity",
	AccountTypeRevenue:   "Revenue",
	AccountTypeExpense:   "Expense",
}

// AccountSubTypes lists account sub types with their display labels
var AccountSubTypes = map[string]string{
	SubTypeCurrentAsset:      "Current Asset",
	SubTypeFixedAsset:        "Fixed Asset",
	SubTypeIntangibleAsset:   "Intangible Asset",
	SubTypeCurrentLiability:  "Current Liability",
	SubTypeLongTermLiability: "Long Term Liability",
	SubTypeOwnerEquity:       "Owner Equity",
	SubTypeRetainedEarnings:  "Retained Earnings",
	SubTypeOperatingRevenue:  "Operating Revenue",
	SubTypeOtherRevenue:      "Other Revenue",
	SubTypeOperatingExpense:  "Operating Expense",
	SubTypeOtherExpense:      "Other Expense",
}

// DefaultNormalBalance returns the side on which an account of the given type increases
func DefaultNormalBalance(accountType string) string {
	switch accountType {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// IsRoot returns true if the account has no parent
func (a *Account) IsRoot() bool {
	return a.ParentID == nil
}

// IsParentOf returns true if other is a direct child of a
func (a *Account) IsParentOf(other *Account) bool {
	return other.ParentID != nil && *other.ParentID == a.ID
}

// IsChildOf returns true if a is a direct child of other
func (a *Account) IsChildOf(other *Account) bool {
	return a.ParentID != nil && *a.ParentID == other.ID
}

// ComputeBalance applies the normal-balance sign convention to posted totals.
// Debit-normal accounts report debit minus credit, credit-normal accounts the
// opposite; the opening balance is added in both cases.
func ComputeBalance(normalBalance string, opening, debitTotal, creditTotal decimal.Decimal) decimal.Decimal {
	balance := debitTotal.Sub(creditTotal)
	if normalBalance == NormalBalanceCredit {
		balance = balance.Neg()
	}
	return balance.Add(opening)
}

// AccountResponse is the JSON response format for accounts
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Type           string          `json:"type"`
	SubType        string          `json:"sub_type"`
	ParentID       *uuid.UUID      `json:"parent_id"`
	Level          int             `json:"level"`
	IsActive       bool            `json:"is_active"`
	IsSystem       bool            `json:"is_system"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	NormalBalance  string          `json:"normal_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToResponse converts Account to AccountResponse
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Description:    a.Description,
		Type:           a.Type,
		SubType:        a.SubType,
		ParentID:       a.ParentID,
		Level:          a.Level,
		IsActive:       a.IsActive,
		IsSystem:       a.IsSystem,
		OpeningBalance: a.OpeningBalance,
		NormalBalance:  a.NormalBalance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountNode is a chart-of-accounts tree node
type AccountNode struct {
	AccountResponse
	Children []*AccountNode `json:"children"`
}

// BuildAccountTree arranges a flat, code-ordered account list into root nodes.
// Accounts whose parent is missing from the list are treated as roots.
func BuildAccountTree(accounts []Account) []*AccountNode {
	nodes := make(map[uuid.UUID]*AccountNode, len(accounts))
	for i := range accounts {
		nodes[accounts[i].ID] = &AccountNode{
			AccountResponse: accounts[i].ToResponse(),
			Children:        []*AccountNode{},
		}
	}

	var roots []*AccountNode
	for i := range accounts {
		node := nodes[accounts[i].ID]
		if accounts[i].ParentID != nil {
			if parent, ok := nodes[*accounts[i].ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
