package mocks

import (
	"context"

	"docarchive/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) DocumentSummary(ctx context.Context) (*model.DocumentSummaryReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentSummaryReport), args.Error(1)
}

func (m *MockReportRepository) StorageUsage(ctx context.Context) (*model.StorageUsageReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageUsageReport), args.Error(1)
}

func (m *MockReportRepository) UserActivity(ctx context.Context) (*model.UserActivityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserActivityReport), args.Error(1)
}
