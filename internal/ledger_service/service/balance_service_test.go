package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/transfer-pipeline/internal/domain/account"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// MockAccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
	lockOrder []string // Records LockForUpdate call order
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	args := m.Called(ctx, accountNumber)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, accountNumber string) (*account.Account, error) {
	m.lockOrder = append(m.lockOrder, accountNumber)
	args := m.Called(ctx, accountNumber)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	m.Called(tx)
	return m
}

// fakeTxRunner executes the closure directly
type fakeTxRunner struct{}

func (f *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func activeAccount(number string, userID int64, balance int64) *account.Account {
	acc, _ := account.NewAccount(number, userID, decimal.NewFromInt(balance), "USD")
	return acc
}

func TestBalanceService_Credit(t *testing.T) {
	repo := &MockAccountRepository{}
	svc := NewBalanceService(repo, &fakeTxRunner{})

	acc := activeAccount("ACC-001", 1, 100)

	repo.On("WithTx", mock.Anything).Return().Once()
	repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(acc, nil).Once()
	repo.On("Update", mock.Anything, acc).Return(nil).Once()

	updated, err := svc.Credit(context.Background(), "ACC-001", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, updated.Version)

	repo.AssertExpectations(t)
}

func TestBalanceService_Debit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		acc := activeAccount("ACC-001", 1, 100)

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(acc, nil).Once()
		repo.On("Update", mock.Anything, acc).Return(nil).Once()

		updated, err := svc.Debit(context.Background(), "ACC-001", decimal.NewFromInt(40))
		require.NoError(t, err)
		assert.True(t, updated.Balance.Equal(decimal.NewFromInt(60)))

		repo.AssertExpectations(t)
	})

	t.Run("insufficient funds aborts the transaction", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		acc := activeAccount("ACC-001", 1, 100)

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(acc, nil).Once()

		_, err := svc.Debit(context.Background(), "ACC-001", decimal.NewFromInt(101))
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown account", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-404").Return(nil, account.ErrAccountNotFound{AccountNumber: "ACC-404"}).Once()

		_, err := svc.Debit(context.Background(), "ACC-404", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
	})
}

func TestBalanceService_Transfer(t *testing.T) {
	t.Run("both legs apply atomically", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		from := activeAccount("ACC-002", 1, 100)
		to := activeAccount("ACC-001", 2, 10)

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(to, nil).Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-002").Return(from, nil).Once()
		repo.On("Update", mock.Anything, from).Return(nil).Once()
		repo.On("Update", mock.Anything, to).Return(nil).Once()

		err := svc.Transfer(context.Background(), "ACC-002", "ACC-001", decimal.NewFromInt(30))
		require.NoError(t, err)

		assert.True(t, from.Balance.Equal(decimal.NewFromInt(70)))
		assert.True(t, to.Balance.Equal(decimal.NewFromInt(40)))

		// Rows locked in ascending account-number order regardless of direction
		assert.Equal(t, []string{"ACC-001", "ACC-002"}, repo.lockOrder)

		repo.AssertExpectations(t)
	})

	t.Run("self transfer rejected", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		err := svc.Transfer(context.Background(), "ACC-001", "ACC-001", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, ErrSameAccountTransfer)
		repo.AssertNotCalled(t, "LockForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("insufficient funds rolls back both legs", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		from := activeAccount("ACC-001", 1, 20)
		to := activeAccount("ACC-002", 2, 10)

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(from, nil).Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-002").Return(to, nil).Once()

		err := svc.Transfer(context.Background(), "ACC-001", "ACC-002", decimal.NewFromInt(30))
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("inactive destination fails the transfer", func(t *testing.T) {
		repo := &MockAccountRepository{}
		svc := NewBalanceService(repo, &fakeTxRunner{})

		from := activeAccount("ACC-001", 1, 100)
		to := activeAccount("ACC-002", 2, 10)
		to.Status = shared.AccountStatusSuspended

		repo.On("WithTx", mock.Anything).Return().Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-001").Return(from, nil).Once()
		repo.On("LockForUpdate", mock.Anything, "ACC-002").Return(to, nil).Once()

		err := svc.Transfer(context.Background(), "ACC-001", "ACC-002", decimal.NewFromInt(30))
		assert.ErrorIs(t, err, account.ErrAccountInactive)

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
