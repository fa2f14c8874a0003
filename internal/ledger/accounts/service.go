package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// Service coordinates chart-of-accounts operations.
type Service struct {
	repo Repository
}

// NewService constructs the accounts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Validate ensures the create input is coherent before touching the store.
func (in CreateInput) Validate() error {
	if in.TenantID == 0 {
		return errors.New("accounts: tenant required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("accounts: code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("accounts: name required")
	}
	if !in.Type.Valid() {
		return errors.New("accounts: unknown account type")
	}
	return nil
}

// Create inserts a new account, resolving and validating the parent.
// A child must carry its parent's type; the tree is single-category per branch.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	var created Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		acc := Account{
			TenantID: in.TenantID,
			Code:     strings.TrimSpace(in.Code),
			Name:     strings.TrimSpace(in.Name),
			NameAlt:  strings.TrimSpace(in.NameAlt),
			Type:     in.Type,
			Level:    1,
			IsActive: true,
			Currency: in.Currency,
		}
		if in.ParentCode != "" {
			parent, err := tx.GetByCode(ctx, in.TenantID, in.ParentCode)
			if err != nil {
				if errors.Is(err, shared.ErrAccountNotFound) {
					return shared.ErrParentNotFound
				}
				return err
			}
			if parent.Type != in.Type {
				return shared.ErrParentTypeMismatch
			}
			// An account that already carries postings stays a leaf; report
			// rollups sum children in place of a parent's own balance.
			posted, err := tx.HasLines(ctx, parent.ID)
			if err != nil {
				return err
			}
			if posted {
				return shared.ErrAccountInUse
			}
			acc.ParentID = &parent.ID
			acc.Level = parent.Level + 1
		}
		var err error
		created, err = tx.Insert(ctx, acc)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return created, nil
}

// Update changes account fields. Renaming the code or retyping is allowed
// only while the subtree carries no postings; a retype additionally requires
// a standalone node so each branch keeps a single category.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Account, error) {
	if in.TenantID == 0 || in.Code == "" {
		return Account{}, errors.New("accounts: tenant and code required")
	}
	if in.Type != nil && !in.Type.Valid() {
		return Account{}, errors.New("accounts: unknown account type")
	}
	var updated Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.NewCode != nil || in.Type != nil {
			acc, err := tx.GetByCode(ctx, in.TenantID, in.Code)
			if err != nil {
				return err
			}
			inUse, err := tx.SubtreeHasLines(ctx, in.TenantID, acc.ID)
			if err != nil {
				return err
			}
			if inUse {
				return shared.ErrAccountImmutable
			}
			if in.Type != nil && *in.Type != acc.Type {
				hasChildren, err := tx.HasChildren(ctx, acc.ID)
				if err != nil {
					return err
				}
				if hasChildren {
					return shared.ErrAccountImmutable
				}
				if acc.ParentID != nil {
					return shared.ErrParentTypeMismatch
				}
			}
		}
		var err error
		updated, err = tx.UpdateDetails(ctx, in)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return updated, nil
}

// Delete removes an account. It refuses system accounts, accounts with
// children, and accounts whose subtree is referenced by journal lines.
func (s *Service) Delete(ctx context.Context, tenantID int64, code string) error {
	if tenantID == 0 || code == "" {
		return errors.New("accounts: tenant and code required")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		acc, err := tx.GetByCode(ctx, tenantID, code)
		if err != nil {
			return err
		}
		if acc.IsSystem {
			return shared.ErrSystemAccount
		}
		inUse, err := tx.SubtreeHasLines(ctx, tenantID, acc.ID)
		if err != nil {
			return err
		}
		if inUse {
			return shared.ErrAccountInUse
		}
		hasChildren, err := tx.HasChildren(ctx, acc.ID)
		if err != nil {
			return err
		}
		if hasChildren {
			return shared.ErrAccountInUse
		}
		return tx.Delete(ctx, tenantID, acc.ID)
	})
}

// List returns the tenant's flat chart ordered by code.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// Get fetches a single account by code.
func (s *Service) Get(ctx context.Context, tenantID int64, code string) (Account, error) {
	return s.repo.GetByCode(ctx, tenantID, code)
}

// Tree returns the nested forest for the tenant.
func (s *Service) Tree(ctx context.Context, tenantID int64) ([]*TreeNode, error) {
	list, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return BuildForest(list), nil
}

// Seed installs the default chart for a tenant. Codes already present are
// skipped, so onboarding retries are safe.
func (s *Service) Seed(ctx context.Context, tenantID int64) (int, error) {
	if tenantID == 0 {
		return 0, errors.New("accounts: tenant required")
	}
	var inserted int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, entry := range DefaultChart {
			if _, err := tx.GetByCode(ctx, tenantID, entry.Code); err == nil {
				continue
			} else if !errors.Is(err, shared.ErrAccountNotFound) {
				return err
			}
			acc := Account{
				TenantID: tenantID,
				Code:     entry.Code,
				Name:     entry.Name,
				Type:     entry.Type,
				Level:    1,
				IsActive: true,
				IsSystem: entry.IsSystem,
				Currency: "USD",
			}
			if entry.ParentCode != "" {
				parent, err := tx.GetByCode(ctx, tenantID, entry.ParentCode)
				if err != nil {
					return err
				}
				acc.ParentID = &parent.ID
				acc.Level = parent.Level + 1
			}
			if _, err := tx.Insert(ctx, acc); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
