package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"kanzlei-server/internal/schemas"
)

type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) CreateSession(ctx context.Context, userID uuid.UUID) (*schemas.Session, error) {
	args := m.Called(ctx, userID)
	if session := args.Get(0); session != nil {
		return session.(*schemas.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) FindValidByToken(ctx context.Context, token string) (*schemas.Session, error) {
	args := m.Called(ctx, token)
	if session := args.Get(0); session != nil {
		return session.(*schemas.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) RenewSession(ctx context.Context, sessionID uuid.UUID) (*schemas.Session, error) {
	args := m.Called(ctx, sessionID)
	if session := args.Get(0); session != nil {
		return session.(*schemas.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) ExpireSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionManager) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
