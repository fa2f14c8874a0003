package journals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/periods"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	_ "github.com/quillbooks/quillbooks/testing"
)

// mockRepository is an in-memory double for Repository and TxRepository.
// WithTx runs the closure against the same store without rollback, which is
// fine here: the service checks invariants before mutating.
type mockRepository struct {
	accounts   map[int64]*accounts.Account
	byCode     map[string]int64
	periods    map[int64]*periods.Period
	entries    map[int64]*Entry
	lines      map[int64][]Line
	nextID     int64
	nextNumber int64

	// loseRace makes MarkPosted report zero rows updated, simulating a
	// concurrent transaction winning the DRAFT -> POSTED flip.
	loseRace bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[int64]*accounts.Account),
		byCode:   make(map[string]int64),
		periods:  make(map[int64]*periods.Period),
		entries:  make(map[int64]*Entry),
		lines:    make(map[int64][]Line),
	}
}

func (m *mockRepository) addAccount(id int64, code string, typ accounts.AccountType, active bool, parentID *int64) {
	m.accounts[id] = &accounts.Account{ID: id, TenantID: 1, Code: code, Type: typ, IsActive: active, ParentID: parentID}
	m.byCode[code] = id
}

func (m *mockRepository) addPeriod(id int64, start, end time.Time, status periods.PeriodStatus) {
	m.periods[id] = &periods.Period{ID: id, TenantID: 1, Name: start.Format("2006-01"), StartDate: start, EndDate: end, Status: status}
}

func (m *mockRepository) Get(ctx context.Context, tenantID, entryID int64) (Entry, error) {
	return m.GetEntryForUpdate(ctx, tenantID, entryID)
}

func (m *mockRepository) List(_ context.Context, tenantID int64, _ ListFilter) ([]Entry, int, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.TenantID == tenantID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) InsertEntry(_ context.Context, e Entry) (Entry, error) {
	m.nextID++
	m.nextNumber++
	e.ID = m.nextID
	e.Number = m.nextNumber
	stored := e
	m.entries[e.ID] = &stored
	return e, nil
}

func (m *mockRepository) InsertLines(_ context.Context, entryID int64, lines []Line) error {
	stored := make([]Line, len(lines))
	copy(stored, lines)
	for i := range stored {
		stored[i].EntryID = entryID
	}
	m.lines[entryID] = stored
	return nil
}

func (m *mockRepository) GetEntryForUpdate(_ context.Context, tenantID, entryID int64) (Entry, error) {
	e, ok := m.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return Entry{}, shared.ErrEntryNotFound
	}
	return *e, nil
}

func (m *mockRepository) GetLines(_ context.Context, entryID int64) ([]Line, error) {
	return m.lines[entryID], nil
}

func (m *mockRepository) MarkPosted(_ context.Context, entryID, actorID int64, at time.Time) (bool, error) {
	e, ok := m.entries[entryID]
	if !ok || e.Status != EntryStatusDraft || m.loseRace {
		return false, nil
	}
	e.Status = EntryStatusPosted
	e.PostedBy = &actorID
	e.PostedAt = &at
	return true, nil
}

func (m *mockRepository) MarkReversed(_ context.Context, entryID, reversedByID int64) error {
	e, ok := m.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Status = EntryStatusReversed
	e.ReversedByID = &reversedByID
	return nil
}

func (m *mockRepository) DeleteEntry(_ context.Context, tenantID, entryID int64) error {
	e, ok := m.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return shared.ErrEntryNotFound
	}
	delete(m.entries, entryID)
	delete(m.lines, entryID)
	return nil
}

func (m *mockRepository) GetPeriodByDate(_ context.Context, tenantID int64, date time.Time) (periods.Period, error) {
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.Covers(date) {
			return *p, nil
		}
	}
	return periods.Period{}, shared.ErrNoPeriodForDate
}

func (m *mockRepository) GetPeriodForUpdate(_ context.Context, tenantID, periodID int64) (periods.Period, error) {
	p, ok := m.periods[periodID]
	if !ok || p.TenantID != tenantID {
		return periods.Period{}, shared.ErrPeriodNotFound
	}
	return *p, nil
}

func (m *mockRepository) GetPostableAccount(_ context.Context, tenantID int64, code string) (accounts.Account, error) {
	id, ok := m.byCode[code]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	a := m.accounts[id]
	if a.TenantID != tenantID {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	if !a.IsActive {
		return accounts.Account{}, shared.ErrAccountInactive
	}
	for _, other := range m.accounts {
		if other.ParentID != nil && *other.ParentID == a.ID {
			return accounts.Account{}, shared.ErrAccountNotPostable
		}
	}
	return *a, nil
}

func (m *mockRepository) GetAccountByID(_ context.Context, tenantID, accountID int64) (accounts.Account, error) {
	a, ok := m.accounts[accountID]
	if !ok || a.TenantID != tenantID {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return *a, nil
}

func (m *mockRepository) ApplyBalance(_ context.Context, accountID int64, delta decimal.Decimal) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return shared.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

func (m *mockRepository) balanceOf(code string) decimal.Decimal {
	return m.accounts[m.byCode[code]].Balance
}

type spyCache struct{ bumps int }

func (c *spyCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

type spyMetrics struct{ posted, reversed int }

func (m *spyMetrics) EntryPosted()   { m.posted++ }
func (m *spyMetrics) EntryReversed() { m.reversed++ }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// newPostingFixture wires a tenant with a cash and a tuition account plus an
// open January period.
func newPostingFixture() (*Service, *mockRepository, *spyCache, *spyMetrics) {
	repo := newMockRepository()
	repo.addAccount(10, "1110", accounts.AccountTypeAsset, true, nil)
	repo.addAccount(20, "4100", accounts.AccountTypeRevenue, true, nil)
	repo.addPeriod(100, date(2026, 1, 1), date(2026, 1, 31), periods.PeriodStatusOpen)

	cache := &spyCache{}
	metrics := &spyMetrics{}
	svc := NewService(repo, nil, cache)
	svc.WithMetrics(metrics)
	svc.WithNow(func() time.Time { return date(2026, 1, 20) })
	return svc, repo, cache, metrics
}

func tuitionInput(amount string) CreateInput {
	return CreateInput{
		TenantID: 1,
		ActorID:  7,
		Date:     date(2026, 1, 15),
		Memo:     "January tuition",
		RefType:  RefTypeInvoice,
		Lines: []LineInput{
			{AccountCode: "1110", Debit: dec(amount)},
			{AccountCode: "4100", Credit: dec(amount)},
		},
	}
}

func TestCreateDraft(t *testing.T) {
	svc, repo, cache, _ := newPostingFixture()
	ctx := context.Background()

	entry, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)
	assert.Equal(t, EntryStatusDraft, entry.Status)
	assert.EqualValues(t, 100, entry.PeriodID)
	assert.EqualValues(t, 1, entry.Number)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, 1, entry.Lines[0].Position)
	assert.Equal(t, 2, entry.Lines[1].Position)
	assert.True(t, entry.TotalDebit.Equal(dec("150.00")))
	assert.True(t, entry.TotalCredit.Equal(dec("150.00")))

	// Drafts never touch balances or the report cache.
	assert.True(t, repo.balanceOf("1110").IsZero())
	assert.True(t, repo.balanceOf("4100").IsZero())
	assert.Zero(t, cache.bumps)
}

func TestCreateRejections(t *testing.T) {
	svc, repo, _, _ := newPostingFixture()
	repo.addAccount(30, "1100", accounts.AccountTypeAsset, true, nil)
	repo.accounts[10].ParentID = ptrInt64(30) // 1100 now aggregates 1110
	repo.addAccount(40, "6110", accounts.AccountTypeExpense, false, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    CreateInput
		check func(t *testing.T, err error)
	}{
		{
			name: "unbalanced",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "1110", Debit: dec("100.00")},
				{AccountCode: "4100", Credit: dec("99.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrUnbalancedEntry) },
		},
		{
			name: "rounding tolerance holds",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "1110", Debit: dec("100.00")},
				{AccountCode: "4100", Credit: dec("99.99")},
			}},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:  "single line",
			in:    CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{{AccountCode: "1110", Debit: dec("1.00")}}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrTooFewLines) },
		},
		{
			name: "both sides set",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "1110", Debit: dec("1.00"), Credit: dec("1.00")},
				{AccountCode: "4100", Credit: dec("1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrMalformedLine) },
		},
		{
			name: "negative amount",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "1110", Debit: dec("-1.00")},
				{AccountCode: "4100", Credit: dec("-1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrMalformedLine) },
		},
		{
			name: "unknown account",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "9999", Debit: dec("1.00")},
				{AccountCode: "4100", Credit: dec("1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrAccountNotFound) },
		},
		{
			name: "aggregation node",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "1100", Debit: dec("1.00")},
				{AccountCode: "4100", Credit: dec("1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrAccountNotPostable) },
		},
		{
			name: "inactive account",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 1, 15), Lines: []LineInput{
				{AccountCode: "6110", Debit: dec("1.00")},
				{AccountCode: "4100", Credit: dec("1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrAccountInactive) },
		},
		{
			name: "no period for date",
			in: CreateInput{TenantID: 1, ActorID: 7, Date: date(2026, 6, 15), Lines: []LineInput{
				{AccountCode: "1110", Debit: dec("1.00")},
				{AccountCode: "4100", Credit: dec("1.00")},
			}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, shared.ErrNoPeriodForDate) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			tc.check(t, err)
		})
	}
}

func TestPostAppliesBalances(t *testing.T) {
	svc, repo, cache, metrics := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)

	posted, err := svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, EntryStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedBy)
	assert.EqualValues(t, 7, *posted.PostedBy)
	require.NotNil(t, posted.PostedAt)

	// Debit grows the asset, credit grows the revenue.
	assert.True(t, repo.balanceOf("1110").Equal(dec("150.00")), "cash: %s", repo.balanceOf("1110"))
	assert.True(t, repo.balanceOf("4100").Equal(dec("150.00")), "tuition: %s", repo.balanceOf("4100"))

	assert.Equal(t, 1, cache.bumps)
	assert.Equal(t, 1, metrics.posted)
}

func TestPostTwice(t *testing.T) {
	svc, _, _, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)

	_, err = svc.Post(ctx, 1, draft.ID, 7)
	assert.ErrorIs(t, err, shared.ErrEntryAlreadyPosted)
}

func TestPostLosesConcurrentRace(t *testing.T) {
	svc, repo, cache, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)

	repo.loseRace = true
	_, err = svc.Post(ctx, 1, draft.ID, 7)
	assert.ErrorIs(t, err, shared.ErrEntryAlreadyPosted)
	assert.True(t, repo.balanceOf("1110").IsZero())
	assert.Zero(t, cache.bumps)
}

func TestPostIntoClosedPeriod(t *testing.T) {
	svc, repo, _, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)

	repo.periods[100].Status = periods.PeriodStatusClosed
	_, err = svc.Post(ctx, 1, draft.ID, 7)
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
	assert.True(t, repo.balanceOf("1110").IsZero())

	// Reopening unblocks the same draft.
	repo.periods[100].Status = periods.PeriodStatusOpen
	posted, err := svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, EntryStatusPosted, posted.Status)
}

func TestReverseRestoresBalances(t *testing.T) {
	svc, repo, cache, metrics := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)

	reversal, err := svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7})
	require.NoError(t, err)
	assert.Equal(t, EntryStatusPosted, reversal.Status)
	assert.Equal(t, RefTypeReversal, reversal.RefType)
	require.NotNil(t, reversal.ReversalOfID)
	assert.Equal(t, draft.ID, *reversal.ReversalOfID)
	assert.Equal(t, draft.Date, reversal.Date)
	assert.Equal(t, fmt.Sprintf("Reversal of JE %d", draft.Number), reversal.Memo)

	// Mirror legs swap sides.
	require.Len(t, reversal.Lines, 2)
	assert.True(t, reversal.Lines[0].Credit.Equal(dec("150.00")))
	assert.True(t, reversal.Lines[1].Debit.Equal(dec("150.00")))

	original, err := svc.Get(ctx, 1, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, EntryStatusReversed, original.Status)
	require.NotNil(t, original.ReversedByID)
	assert.Equal(t, reversal.ID, *original.ReversedByID)

	// Net effect on every account is zero.
	assert.True(t, repo.balanceOf("1110").IsZero(), "cash: %s", repo.balanceOf("1110"))
	assert.True(t, repo.balanceOf("4100").IsZero(), "tuition: %s", repo.balanceOf("4100"))

	assert.Equal(t, 2, cache.bumps)
	assert.Equal(t, 1, metrics.reversed)

	// REVERSED is terminal.
	_, err = svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7})
	assert.ErrorIs(t, err, shared.ErrEntryReversed)
}

func TestReverseGuards(t *testing.T) {
	svc, repo, _, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)

	// Drafts cannot be reversed.
	_, err = svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7})
	assert.ErrorIs(t, err, shared.ErrEntryNotPosted)

	_, err = svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)

	// Reversal date must stay inside the original entry's period.
	outside := date(2026, 2, 10)
	_, err = svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7, Date: &outside})
	assert.ErrorIs(t, err, shared.ErrNoPeriodForDate)

	// A closed period rejects the reversal outright.
	repo.periods[100].Status = periods.PeriodStatusClosed
	_, err = svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7})
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestReverseWithExplicitDateAndMemo(t *testing.T) {
	svc, _, _, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, 1, draft.ID, 7)
	require.NoError(t, err)

	when := date(2026, 1, 28)
	reversal, err := svc.Reverse(ctx, ReverseInput{TenantID: 1, EntryID: draft.ID, ActorID: 7, Date: &when, Memo: "billing correction"})
	require.NoError(t, err)
	assert.Equal(t, when, reversal.Date)
	assert.Equal(t, "billing correction", reversal.Memo)
}

func TestDeleteDraftOnly(t *testing.T) {
	svc, repo, _, _ := newPostingFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, tuitionInput("150.00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, draft.ID, 7))
	_, err = svc.Get(ctx, 1, draft.ID)
	assert.ErrorIs(t, err, shared.ErrEntryNotFound)
	assert.True(t, repo.balanceOf("1110").IsZero())

	posted, err := svc.Create(ctx, tuitionInput("80.00"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, 1, posted.ID, 7)
	require.NoError(t, err)

	err = svc.Delete(ctx, 1, posted.ID, 7)
	assert.ErrorIs(t, err, shared.ErrEntryNotDraft)
}

func ptrInt64(v int64) *int64 { return &v }
