package mocks

import (
	"context"

	"metrodoc/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) Find(ctx context.Context, documentID string) (*model.Summary, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

func (m *MockSummaryRepository) Save(ctx context.Context, documentID string, s model.Summary) error {
	args := m.Called(ctx, documentID, s)
	return args.Error(0)
}
