package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service orchestrates report generation: fetch activity for the requested
// framing, run the pure builders, and cache the result until the next bump.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs the reports service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

const dateLayout = "2006-01-02"

func dateToken(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format(dateLayout)
}

// TrialBalance builds the trial balance, either from stored balances (asOf
// nil) or from the fold of posted lines up to the cutoff date.
func (s *Service) TrialBalance(ctx context.Context, tenantID int64, asOf *time.Time) (TrialBalanceViewModel, error) {
	key, err := s.cache.BuildKey(ctx, keyTrialBalance(tenantID, dateToken(asOf)))
	if err != nil {
		return TrialBalanceViewModel{}, err
	}
	var vm TrialBalanceViewModel
	err = s.cache.FetchJSON(ctx, key, &vm, func(ctx context.Context) (interface{}, error) {
		rows, err := s.activity(ctx, tenantID, asOf)
		if err != nil {
			return nil, err
		}
		return NewTrialBalanceViewModel(tenantID, dateToken(asOf), BuildTrialBalance(rows)), nil
	})
	return vm, err
}

// IncomeStatement builds the income statement. With a range it reports the
// period's activity from line sums; without one it reports since inception
// from stored balances.
func (s *Service) IncomeStatement(ctx context.Context, tenantID int64, from, to *time.Time) (IncomeStatementViewModel, error) {
	key, err := s.cache.BuildKey(ctx, keyIncomeStatement(tenantID, dateToken(from), dateToken(to)))
	if err != nil {
		return IncomeStatementViewModel{}, err
	}
	var vm IncomeStatementViewModel
	err = s.cache.FetchJSON(ctx, key, &vm, func(ctx context.Context) (interface{}, error) {
		var rows []AccountActivity
		var err error
		if from != nil && to != nil {
			rows, err = s.repo.ActivityInRange(ctx, tenantID, *from, *to)
		} else {
			rows, err = s.activity(ctx, tenantID, to)
		}
		if err != nil {
			return nil, err
		}
		return NewIncomeStatementViewModel(tenantID, dateToken(from), dateToken(to), BuildIncomeStatement(rows)), nil
	})
	return vm, err
}

// BalanceSheet builds the balance sheet as of the cutoff date, or from
// stored balances when no date is given.
func (s *Service) BalanceSheet(ctx context.Context, tenantID int64, asOf *time.Time) (BalanceSheetViewModel, error) {
	key, err := s.cache.BuildKey(ctx, keyBalanceSheet(tenantID, dateToken(asOf)))
	if err != nil {
		return BalanceSheetViewModel{}, err
	}
	var vm BalanceSheetViewModel
	err = s.cache.FetchJSON(ctx, key, &vm, func(ctx context.Context) (interface{}, error) {
		rows, err := s.activity(ctx, tenantID, asOf)
		if err != nil {
			return nil, err
		}
		return NewBalanceSheetViewModel(tenantID, dateToken(asOf), BuildBalanceSheet(rows)), nil
	})
	return vm, err
}

// Statements bundles the income statement and balance sheet for dashboard
// style consumers, fetching both concurrently.
type Statements struct {
	IncomeStatement IncomeStatementViewModel `json:"income_statement"`
	BalanceSheet    BalanceSheetViewModel    `json:"balance_sheet"`
}

func (s *Service) Statements(ctx context.Context, tenantID int64, from, to *time.Time) (Statements, error) {
	var out Statements
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vm, err := s.IncomeStatement(ctx, tenantID, from, to)
		out.IncomeStatement = vm
		return err
	})
	g.Go(func() error {
		vm, err := s.BalanceSheet(ctx, tenantID, to)
		out.BalanceSheet = vm
		return err
	})
	return out, g.Wait()
}

func (s *Service) activity(ctx context.Context, tenantID int64, asOf *time.Time) ([]AccountActivity, error) {
	if asOf == nil {
		return s.repo.ActivityFromBalances(ctx, tenantID)
	}
	return s.repo.ActivityAsOf(ctx, tenantID, *asOf)
}
