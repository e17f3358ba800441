package service

import (
	"context"
	"sync"

	"xubot/events"
	"xubot/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerStore is a mock implementation of LedgerStore
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Get(ctx context.Context, userID int64) (*models.Account, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockLedgerStore) Set(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockLedgerStore) All(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockLedgerStore) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBiasStore is a mock implementation of BiasStore
type MockBiasStore struct {
	mock.Mock
}

func (m *MockBiasStore) Get(ctx context.Context, userID int64) (*models.BiasRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BiasRecord), args.Error(1)
}

func (m *MockBiasStore) Put(ctx context.Context, record *models.BiasRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockBiasStore) Remove(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBiasStore) IncrementGamesAffected(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBiasStore) All(ctx context.Context) ([]*models.BiasRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BiasRecord), args.Error(1)
}

func (m *MockBiasStore) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) AddBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error) {
	args := m.Called(ctx, userID, amount, txType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) SubtractBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, int64, error) {
	args := m.Called(ctx, userID, amount, txType)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletService) SetBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error) {
	args := m.Called(ctx, userID, amount, txType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) HasSufficientBalance(ctx context.Context, userID int64, amount int64) (bool, error) {
	args := m.Called(ctx, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletService) Transfer(ctx context.Context, fromID, toID int64, amount int64) (*models.TransferResult, error) {
	args := m.Called(ctx, fromID, toID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferResult), args.Error(1)
}

func (m *MockWalletService) ParseBetAmount(ctx context.Context, userID int64, raw string) (int64, bool, string, error) {
	args := m.Called(ctx, userID, raw)
	return args.Get(0).(int64), args.Bool(1), args.String(2), args.Error(3)
}

// MockBiasPolicy is a mock implementation of BiasPolicy
type MockBiasPolicy struct {
	mock.Mock
}

func (m *MockBiasPolicy) IsUnlucky(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBiasPolicy) EffectiveWinProbability(ctx context.Context, userID int64, base float64) (float64, error) {
	args := m.Called(ctx, userID, base)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBiasPolicy) AddUnlucky(ctx context.Context, adminID, targetID int64, reason string) error {
	args := m.Called(ctx, adminID, targetID, reason)
	return args.Error(0)
}

func (m *MockBiasPolicy) RemoveUnlucky(ctx context.Context, targetID int64) error {
	args := m.Called(ctx, targetID)
	return args.Error(0)
}

func (m *MockBiasPolicy) MarkGameAffected(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// nopPublisher discards events; wallet tests that do not assert on events use it
type nopPublisher struct{}

func (nopPublisher) Emit(ctx context.Context, event events.Event) {}

// recordingPublisher captures emitted events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Emit(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]events.Event, len(p.events))
	copy(snapshot, p.events)
	return snapshot
}
