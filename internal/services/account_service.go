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
)

// HierarchySeparator joins account names in a hierarchy path
const HierarchySeparator = " > "

// AccountService manages the chart of accounts
type AccountService struct {
	repo     repository.LedgerRepository
	auditSvc *AuditService
	now      func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(repo repository.LedgerRepository, auditSvc *AuditService) *AccountService {
	return &AccountService{
		repo:     repo,
		auditSvc: auditSvc,
		now:      time.Now,
	}
}

// AccountInput holds the writable attributes of an account
type AccountInput struct {
	Code           string          `json:"code" binding:"required,max=20"`
	Name           string          `json:"name" binding:"required,max=255"`
	Description    *string         `json:"description"`
	Type           string          `json:"type" binding:"required,oneof=asset liability equity revenue expense"`
	SubType        string          `json:"sub_type" binding:"required"`
	ParentID       *uuid.UUID      `json:"parent_id"`
	IsActive       *bool           `json:"is_active"`
	IsSystem       bool            `json:"is_system"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	NormalBalance  string          `json:"normal_balance" binding:"omitempty,oneof=debit credit"`
}

// AccountUpdate holds the optional attributes of an account update
type AccountUpdate struct {
	Code           *string          `json:"code" binding:"omitempty,max=20"`
	Name           *string          `json:"name" binding:"omitempty,max=255"`
	Description    *string          `json:"description"`
	Type           *string          `json:"type" binding:"omitempty,oneof=asset liability equity revenue expense"`
	SubType        *string          `json:"sub_type"`
	ParentID       *uuid.UUID       `json:"parent_id"`
	ClearParent    bool             `json:"clear_parent"`
	IsActive       *bool            `json:"is_active"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	NormalBalance  *string          `json:"normal_balance" binding:"omitempty,oneof=debit credit"`
}

func validateClassification(accountType, subType, normalBalance string) error {
	if _, ok := models.AccountTypes[accountType]; !ok {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, accountType)
	}
	if _, ok := models.AccountSubTypes[subType]; !ok {
		return fmt.Errorf("%w: unknown account sub type %q", ErrInvalidInput, subType)
	}
	if normalBalance != models.NormalBalanceDebit && normalBalance != models.NormalBalanceCredit {
		return fmt.Errorf("%w: normal balance must be debit or credit", ErrInvalidInput)
	}
	return nil
}

// Create adds an account to the chart, deriving its level from the parent
func (s *AccountService) Create(ctx context.Context, input AccountInput) (*models.Account, error) {
	account := &models.Account{
		Code:           strings.TrimSpace(input.Code),
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Type:           input.Type,
		SubType:        input.SubType,
		ParentID:       input.ParentID,
		IsActive:       true,
		IsSystem:       input.IsSystem,
		OpeningBalance: input.OpeningBalance.Round(models.MoneyPlaces),
		NormalBalance:  input.NormalBalance,
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	if account.NormalBalance == "" {
		account.NormalBalance = models.DefaultNormalBalance(account.Type)
	}
	if err := validateClassification(account.Type, account.SubType, account.NormalBalance); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		if account.ParentID != nil {
			level, err := s.levelUnder(ctx, tx, account.ID, *account.ParentID)
			if err != nil {
				return err
			}
			account.Level = level
		}
		return tx.CreateAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}

	s.auditSvc.LogCreated(ctx, Subject{Type: "account", ID: account.ID}, account.ToResponse())
	return account, nil
}

// Update changes an account. System accounts are read-only.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, input AccountUpdate) (*models.Account, error) {
	var before models.AccountResponse
	var account *models.Account

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		var err error
		account, err = tx.FindAccountByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if account.IsSystem {
			return ErrSystemAccount
		}
		before = account.ToResponse()

		if input.Code != nil {
			account.Code = strings.TrimSpace(*input.Code)
		}
		if input.Name != nil {
			account.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			account.Description = input.Description
		}
		if input.Type != nil {
			account.Type = *input.Type
		}
		if input.SubType != nil {
			account.SubType = *input.SubType
		}
		if input.IsActive != nil {
			account.IsActive = *input.IsActive
		}
		if input.OpeningBalance != nil {
			account.OpeningBalance = input.OpeningBalance.Round(models.MoneyPlaces)
		}
		if input.NormalBalance != nil {
			account.NormalBalance = *input.NormalBalance
		}
		if err := validateClassification(account.Type, account.SubType, account.NormalBalance); err != nil {
			return err
		}

		reparented := false
		switch {
		case input.ClearParent && account.ParentID != nil:
			account.ParentID = nil
			account.Level = 0
			reparented = true
		case input.ParentID != nil && (account.ParentID == nil || *account.ParentID != *input.ParentID):
			level, err := s.levelUnder(ctx, tx, account.ID, *input.ParentID)
			if err != nil {
				return err
			}
			account.ParentID = input.ParentID
			account.Level = level
			reparented = true
		}

		if err := tx.UpdateAccount(ctx, account); err != nil {
			return err
		}
		if reparented {
			return s.relevelDescendants(ctx, tx, account)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}

	s.auditSvc.LogUpdated(ctx, Subject{Type: "account", ID: account.ID}, before, account.ToResponse())
	return account, nil
}

// Delete removes an account and its descendants. System accounts and accounts
// referenced by journal lines cannot be deleted.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	var account *models.Account

	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		var err error
		account, err = tx.FindAccountByID(ctx, id)
		if err != nil {
			return notFound(err)
		}

		subtree, err := s.subtree(ctx, tx, account)
		if err != nil {
			return err
		}
		for i := range subtree {
			if subtree[i].IsSystem {
				return ErrSystemAccount
			}
			used, err := tx.AccountHasLines(ctx, subtree[i].ID)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("%w: %s", ErrAccountInUse, subtree[i].Code)
			}
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}

	s.auditSvc.LogDeleted(ctx, Subject{Type: "account", ID: account.ID}, account.ToResponse())
	return nil
}

// Get returns an account by id
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

// GetByCode returns an account by its code
func (s *AccountService) GetByCode(ctx context.Context, code string) (*models.Account, error) {
	account, err := s.repo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

// List returns accounts matching the query scopes
func (s *AccountService) List(ctx context.Context, query *repository.AccountQuery) ([]models.Account, int64, error) {
	if query.ListQuery == nil {
		query.ListQuery = repository.NewListQuery()
	}
	return s.repo.ListAccounts(ctx, query)
}

// Tree returns the chart of accounts as nested nodes ordered by code
func (s *AccountService) Tree(ctx context.Context, activeOnly bool) ([]*models.AccountNode, error) {
	accounts, err := s.all(ctx, s.repo, activeOnly)
	if err != nil {
		return nil, err
	}
	return models.BuildAccountTree(accounts), nil
}

// Balance computes an account balance over posted entries only
func (s *AccountService) Balance(ctx context.Context, id uuid.UUID) (*models.AccountBalance, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.PostedTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AccountBalance{
		AccountID:      account.ID,
		Code:           account.Code,
		Name:           account.Name,
		NormalBalance:  account.NormalBalance,
		OpeningBalance: account.OpeningBalance,
		DebitTotal:     totals.DebitTotal,
		CreditTotal:    totals.CreditTotal,
		Balance:        models.ComputeBalance(account.NormalBalance, account.OpeningBalance, totals.DebitTotal, totals.CreditTotal),
	}, nil
}

// HierarchyPath returns the account names from the root down, joined by " > "
func (s *AccountService) HierarchyPath(ctx context.Context, id uuid.UUID) (string, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	chain, err := s.ancestors(ctx, s.repo, account.ID, account.ParentID)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(chain)+1)
	for i := len(chain) - 1; i >= 0; i-- {
		names = append(names, chain[i].Name)
	}
	names = append(names, account.Name)
	return strings.Join(names, HierarchySeparator), nil
}

// GeneralLedger returns the posted lines of an account with a running balance.
// When from is set, the running balance starts from the balance carried into that date.
func (s *AccountService) GeneralLedger(ctx context.Context, id uuid.UUID, from, to *time.Time) (*models.GeneralLedger, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	opening := account.OpeningBalance
	if from != nil {
		before := from.AddDate(0, 0, -1)
		prior, err := s.repo.PostedLines(ctx, id, nil, &before)
		if err != nil {
			return nil, err
		}
		opening = models.NewGeneralLedger(account, nil, &before, opening, prior).Closing
	}

	lines, err := s.repo.PostedLines(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	return models.NewGeneralLedger(account, from, to, opening, lines), nil
}

// TrialBalance lists every account with a nonzero posted balance
func (s *AccountService) TrialBalance(ctx context.Context) (*models.TrialBalance, error) {
	accounts, err := s.all(ctx, s.repo, false)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.PostedTotalsByAccount(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewTrialBalance(accounts, totals, s.now()), nil
}

func (s *AccountService) all(ctx context.Context, repo repository.LedgerRepository, activeOnly bool) ([]models.Account, error) {
	query := &repository.AccountQuery{ListQuery: repository.NewListQuery(), ActiveOnly: activeOnly}
	query.PerPage = 0
	accounts, _, err := repo.ListAccounts(ctx, query)
	return accounts, err
}

// ancestors walks up from parentID and returns the chain nearest first.
// It fails with ErrAccountCycle if the walk revisits an account, reaches self,
// or exceeds MaxAccountDepth.
func (s *AccountService) ancestors(ctx context.Context, repo repository.LedgerRepository, self uuid.UUID, parentID *uuid.UUID) ([]models.Account, error) {
	var chain []models.Account
	visited := map[uuid.UUID]bool{self: true}

	for next := parentID; next != nil; {
		if visited[*next] || len(chain) >= models.MaxAccountDepth {
			return nil, ErrAccountCycle
		}
		visited[*next] = true

		parent, err := repo.FindAccountByID(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("parent account: %w", notFound(err))
		}
		chain = append(chain, *parent)
		next = parent.ParentID
	}
	return chain, nil
}

// levelUnder validates parentID as a parent for account id and returns the derived level
func (s *AccountService) levelUnder(ctx context.Context, repo repository.LedgerRepository, id, parentID uuid.UUID) (int, error) {
	if parentID == id {
		return 0, ErrAccountCycle
	}
	chain, err := s.ancestors(ctx, repo, id, &parentID)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// subtree returns the account and all its descendants
func (s *AccountService) subtree(ctx context.Context, repo repository.LedgerRepository, root *models.Account) ([]models.Account, error) {
	accounts, err := s.all(ctx, repo, false)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]models.Account)
	for _, a := range accounts {
		if a.ParentID != nil {
			children[*a.ParentID] = append(children[*a.ParentID], a)
		}
	}

	result := []models.Account{*root}
	visited := map[uuid.UUID]bool{root.ID: true}
	for i := 0; i < len(result); i++ {
		for _, child := range children[result[i].ID] {
			if visited[child.ID] {
				return nil, ErrAccountCycle
			}
			visited[child.ID] = true
			result = append(result, child)
		}
	}
	return result, nil
}

// relevelDescendants recomputes level for every descendant of account
func (s *AccountService) relevelDescendants(ctx context.Context, repo repository.LedgerRepository, account *models.Account) error {
	subtree, err := s.subtree(ctx, repo, account)
	if err != nil {
		return err
	}

	levels := map[uuid.UUID]int{account.ID: account.Level}
	for i := 1; i < len(subtree); i++ {
		child := subtree[i]
		level := levels[*child.ParentID] + 1
		levels[child.ID] = level
		if child.Level == level {
			continue
		}
		child.Level = level
		if err := repo.UpdateAccount(ctx, &child); err != nil {
			return err
		}
	}
	return nil
}
