package advice

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/repositories"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
)

type MockAdviceRepository struct {
	mock.Mock
}

func (m *MockAdviceRepository) Create(ctx context.Context, advice *models.Advice) error {
	return m.Called(ctx, advice).Error(0)
}

func (m *MockAdviceRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Advice, error) {
	args := m.Called(ctx, userID)
	if list := args.Get(0); list != nil {
		return list.([]*models.Advice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdviceRepository) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockAdviceRepository) UpdateTitle(ctx context.Context, id uuid.UUID, userID, title string) error {
	return m.Called(ctx, id, userID, title).Error(0)
}

func (m *MockAdviceRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, req routing.Request) (*routing.Result, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*routing.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockIdentityAdmin struct {
	mock.Mock
}

func (m *MockIdentityAdmin) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// fakeTxManager records whether the last transaction committed or rolled back
type fakeTxManager struct {
	committed  bool
	rolledBack bool
}

type fakeTx struct {
	mgr *fakeTxManager
	ctx context.Context
}

func (f *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &fakeTx{mgr: f, ctx: ctx}, nil
}

func (f *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, _ := f.Begin(ctx)
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (t *fakeTx) Commit() error {
	t.mgr.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.mgr.rolledBack = true
	return nil
}

func (t *fakeTx) Context() context.Context { return t.ctx }
