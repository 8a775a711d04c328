package mocks

import (
	"context"
	"io"

	"metrodoc/internal/model"
	"metrodoc/internal/query"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *MockGateway) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *MockGateway) CurrentUser(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockGateway) FetchAllDocuments(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockGateway) SearchDocuments(ctx context.Context, req query.Request) ([]model.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockGateway) FetchDocumentByID(ctx context.Context, id string) (model.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockGateway) CreateDocument(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error) {
	args := m.Called(ctx, r, fileName, meta)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockGateway) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	args := m.Called(ctx, id, patch)
	if f, ok := args.Get(0).(func(context.Context, string, model.DocumentPatch) model.Document); ok {
		return f(ctx, id, patch), args.Error(1)
	}
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockGateway) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) FetchDocumentSummary(ctx context.Context, id string) (model.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Summary), args.Error(1)
}

func (m *MockGateway) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	args := m.Called(ctx, id, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) FetchAllNotifications(ctx context.Context) ([]model.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockGateway) FetchCurrentNotifications(ctx context.Context) ([]model.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockGateway) FetchPastNotifications(ctx context.Context) ([]model.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockGateway) FetchUnreadCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockGateway) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockGateway) MarkAllNotificationsRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGateway) DeleteNotification(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
