package accounts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	_ "github.com/quillbooks/quillbooks/testing"
)

type mockRepository struct {
	byID    map[int64]*Account
	byCode  map[string]*Account
	nextID  int64
	inUse   map[int64]bool
	txError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:   make(map[int64]*Account),
		byCode: make(map[string]*Account),
		inUse:  make(map[int64]bool),
	}
}

func (m *mockRepository) key(tenantID int64, code string) string {
	return fmt.Sprintf("%d:%s", tenantID, code)
}

func (m *mockRepository) List(_ context.Context, tenantID int64) ([]Account, error) {
	var out []Account
	for _, a := range m.byID {
		if a.TenantID == tenantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) GetByCode(_ context.Context, tenantID int64, code string) (Account, error) {
	a, ok := m.byCode[m.key(tenantID, code)]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return *a, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Insert(_ context.Context, acc Account) (Account, error) {
	if _, exists := m.byCode[m.key(acc.TenantID, acc.Code)]; exists {
		return Account{}, shared.ErrDuplicateCode
	}
	m.nextID++
	acc.ID = m.nextID
	m.byID[acc.ID] = &acc
	m.byCode[m.key(acc.TenantID, acc.Code)] = &acc
	return acc, nil
}

func (m *mockRepository) UpdateDetails(_ context.Context, in UpdateInput) (Account, error) {
	a, ok := m.byCode[m.key(in.TenantID, in.Code)]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	if in.NewCode != nil {
		if _, exists := m.byCode[m.key(in.TenantID, *in.NewCode)]; exists {
			return Account{}, shared.ErrDuplicateCode
		}
		delete(m.byCode, m.key(in.TenantID, a.Code))
		a.Code = *in.NewCode
		m.byCode[m.key(in.TenantID, a.Code)] = a
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.NameAlt != nil {
		a.NameAlt = *in.NameAlt
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	return *a, nil
}

func (m *mockRepository) Delete(_ context.Context, tenantID, id int64) error {
	a, ok := m.byID[id]
	if !ok || a.TenantID != tenantID {
		return shared.ErrAccountNotFound
	}
	delete(m.byCode, m.key(tenantID, a.Code))
	delete(m.byID, id)
	return nil
}

func (m *mockRepository) HasChildren(_ context.Context, id int64) (bool, error) {
	for _, a := range m.byID {
		if a.ParentID != nil && *a.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) HasLines(_ context.Context, accountID int64) (bool, error) {
	return m.inUse[accountID], nil
}

func (m *mockRepository) SubtreeHasLines(_ context.Context, _ int64, rootID int64) (bool, error) {
	return m.inUse[rootID], nil
}

func TestCreateAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	assert.Equal(t, 1, parent.Level)
	assert.True(t, parent.IsActive)

	child, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentCode: "1000"})
	require.NoError(t, err)
	assert.Equal(t, 2, child.Level)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateChildUnderPostedAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	cash, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1110", Name: "Cash", Type: AccountTypeAsset})
	require.NoError(t, err)

	// A posted account keeps its own balance; turning it into a rollup node
	// would drop that balance from every report.
	repo.inUse[cash.ID] = true
	_, err = svc.Create(ctx, CreateInput{TenantID: 1, Code: "1111", Name: "Petty Cash", Type: AccountTypeAsset, ParentCode: "1110"})
	assert.ErrorIs(t, err, shared.ErrAccountInUse)

	repo.inUse[cash.ID] = false
	_, err = svc.Create(ctx, CreateInput{TenantID: 1, Code: "1111", Name: "Petty Cash", Type: AccountTypeAsset, ParentCode: "1110"})
	assert.NoError(t, err)
}

func TestCreateAccountParentTypeMismatch(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{TenantID: 1, Code: "4000", Name: "Revenue", Type: AccountTypeRevenue, ParentCode: "1000"})
	assert.ErrorIs(t, err, shared.ErrParentTypeMismatch)
}

func TestCreateAccountParentMissing(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), CreateInput{TenantID: 1, Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentCode: "9999"})
	assert.ErrorIs(t, err, shared.ErrParentNotFound)
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets Again", Type: AccountTypeAsset})
	assert.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestDeleteAccountRules(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentCode: "1000"})
	require.NoError(t, err)

	// Parent with children cannot go.
	assert.ErrorIs(t, svc.Delete(ctx, 1, parent.Code), shared.ErrAccountInUse)

	// Referenced by journal lines cannot go.
	repo.inUse[child.ID] = true
	assert.ErrorIs(t, svc.Delete(ctx, 1, child.Code), shared.ErrAccountInUse)

	// Clean leaf deletes fine.
	repo.inUse[child.ID] = false
	require.NoError(t, svc.Delete(ctx, 1, child.Code))
	_, err = svc.Get(ctx, 1, child.Code)
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestDeleteSystemAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	count, err := svc.Seed(ctx, 1)
	require.NoError(t, err)
	require.Greater(t, count, 0)

	var system Account
	for _, a := range repo.byID {
		if a.IsSystem {
			system = *a
			break
		}
	}
	require.NotZero(t, system.ID)
	assert.ErrorIs(t, svc.Delete(ctx, 1, system.Code), shared.ErrSystemAccount)
}

func TestSeedIdempotent(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	first, err := svc.Seed(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultChart), first)

	second, err := svc.Seed(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, second)
}

func TestUpdateKeepsCodeAndType(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)

	name := "Current Assets"
	inactive := false
	updated, err := svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1000", Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Current Assets", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.Code, updated.Code)
	assert.Equal(t, created.Type, updated.Type)
}

func TestUpdateCodeAndTypeFreezeOnPosting(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	acc, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1110", Name: "Cash", Type: AccountTypeAsset})
	require.NoError(t, err)

	// Before any posting the code may still change.
	newCode := "1115"
	updated, err := svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1110", NewCode: &newCode})
	require.NoError(t, err)
	assert.Equal(t, "1115", updated.Code)

	repo.inUse[acc.ID] = true

	back := "1110"
	_, err = svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1115", NewCode: &back})
	assert.ErrorIs(t, err, shared.ErrAccountImmutable)

	retype := AccountTypeExpense
	_, err = svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1115", Type: &retype})
	assert.ErrorIs(t, err, shared.ErrAccountImmutable)

	// Administrative fields stay mutable regardless.
	name := "Cash on Hand"
	updated, err = svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1115", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Cash on Hand", updated.Name)
}

func TestUpdateRetypeNeedsStandaloneNode(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{TenantID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{TenantID: 1, Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentCode: "1000"})
	require.NoError(t, err)

	retype := AccountTypeExpense
	_, err = svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1000", Type: &retype})
	assert.ErrorIs(t, err, shared.ErrAccountImmutable)

	// A child must keep its parent's category.
	_, err = svc.Update(ctx, UpdateInput{TenantID: 1, Code: "1100", Type: &retype})
	assert.ErrorIs(t, err, shared.ErrParentTypeMismatch)
}
