package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/services/advice"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
)

// MockAdviceService is a mock implementation of AdviceService
type MockAdviceService struct {
	mock.Mock
}

func (m *MockAdviceService) Generate(ctx context.Context, in advice.Input) (*routing.Result, error) {
	args := m.Called(ctx, in)
	if r := args.Get(0); r != nil {
		return r.(*routing.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdviceService) History(ctx context.Context, userID string) ([]*models.Advice, error) {
	args := m.Called(ctx, userID)
	if list := args.Get(0); list != nil {
		return list.([]*models.Advice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdviceService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockAdviceService) Rename(ctx context.Context, id uuid.UUID, userID, title string) error {
	return m.Called(ctx, id, userID, title).Error(0)
}

func (m *MockAdviceService) DeleteAccount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
