// Package mocks provides testify mocks for the service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodregister/regnotify/internal/registration"
	"github.com/foodregister/regnotify/internal/service"
	"github.com/foodregister/regnotify/internal/storage"
)

// MockRegistrationService is a mock implementation of service.RegistrationService.
type MockRegistrationService struct {
	mock.Mock
}

//nolint:revive
func (m *MockRegistrationService) Submit(ctx context.Context, doc *registration.View, councilURL string) (*service.SubmissionResult, error) {
	args := m.Called(ctx, doc, councilURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

//nolint:revive
func (m *MockRegistrationService) Get(ctx context.Context, fsaID string) (*storage.RegistrationRecord, error) {
	args := m.Called(ctx, fsaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.RegistrationRecord), args.Error(1)
}

//nolint:revive
func (m *MockRegistrationService) Resend(ctx context.Context, fsaID string) error {
	args := m.Called(ctx, fsaID)
	return args.Error(0)
}

//nolint:revive
func (m *MockRegistrationService) ListPending(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

//nolint:revive
func (m *MockRegistrationService) ListDeliveries(ctx context.Context, fsaID string, limit int) ([]storage.DeliveryLogEntry, error) {
	args := m.Called(ctx, fsaID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DeliveryLogEntry), args.Error(1)
}
