package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/transfer-pipeline/internal/domain/account"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testAccount(number string) *account.Account {
	now := time.Now()
	return &account.Account{
		AccountNumber: number,
		UserID:        42,
		Balance:       decimal.NewFromInt(1000),
		Currency:      "USD",
		Status:        shared.AccountStatusActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount("ACC-001")

	query := `
		INSERT INTO accounts \(account_number, user_id, balance, currency, status, version, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.AccountNumber, acc.UserID, acc.Balance, acc.Currency, acc.Status, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.AccountNumber, acc.UserID, acc.Balance, acc.Currency, acc.Status, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByAccountNumber(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount("ACC-001")

	query := `
		SELECT account_number, user_id, balance, currency, status, version, created_at, updated_at
		FROM accounts
		WHERE account_number = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"account_number", "user_id", "balance", "currency", "status", "version", "created_at", "updated_at"}).
			AddRow(expectedAccount.AccountNumber, expectedAccount.UserID, expectedAccount.Balance, expectedAccount.Currency, expectedAccount.Status, expectedAccount.Version, expectedAccount.CreatedAt, expectedAccount.UpdatedAt)
		mock.ExpectQuery(query).WithArgs("ACC-001").WillReturnRows(rows)

		acc, err := repo.GetByAccountNumber(ctx, "ACC-001")
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC-404").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByAccountNumber(ctx, "ACC-404")
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, "ACC-404", accNotFoundErr.AccountNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount("ACC-001")
	acc.Version = 2 // As after one mutation

	query := `
		UPDATE accounts
		SET balance = \$1, status = \$2, version = \$3, updated_at = \$4
		WHERE account_number = \$5 AND version = \$6
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.Balance, acc.Status, acc.Version, acc.UpdatedAt, acc.AccountNumber, acc.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.Balance, acc.Status, acc.Version, acc.UpdatedAt, acc.AccountNumber, acc.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, acc)
		assert.Error(t, err)
		var concErr account.ErrConcurrentModification
		assert.ErrorAs(t, err, &concErr)
		assert.Equal(t, acc.AccountNumber, concErr.AccountNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount("ACC-001")

	query := `
		SELECT account_number, user_id, balance, currency, status, version, created_at, updated_at
		FROM accounts
		WHERE account_number = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"account_number", "user_id", "balance", "currency", "status", "version", "created_at", "updated_at"}).
			AddRow(expectedAccount.AccountNumber, expectedAccount.UserID, expectedAccount.Balance, expectedAccount.Currency, expectedAccount.Status, expectedAccount.Version, expectedAccount.CreatedAt, expectedAccount.UpdatedAt)
		mock.ExpectQuery(query).WithArgs("ACC-001").WillReturnRows(rows)

		acc, err := repo.LockForUpdate(ctx, "ACC-001")
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC-404").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.LockForUpdate(ctx, "ACC-404")
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
