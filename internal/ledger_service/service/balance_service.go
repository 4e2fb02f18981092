// Package service implements the ledger's balance operations on top of the
// account repository, serializing concurrent mutations with row locks.
package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/account"
)

// ErrSameAccountTransfer indicates a transfer where both sides are one account
var ErrSameAccountTransfer = errors.New("cannot transfer to the same account")

// BalanceServiceImpl implements the BalanceService interface
type BalanceServiceImpl struct {
	accountRepo account.Repository
	txRunner    TxRunner
}

// NewBalanceService creates a new balance service
func NewBalanceService(accountRepo account.Repository, txRunner TxRunner) BalanceService {
	return &BalanceServiceImpl{
		accountRepo: accountRepo,
		txRunner:    txRunner,
	}
}

// CreateAccount creates a new active account with the given parameters
func (s *BalanceServiceImpl) CreateAccount(ctx context.Context, accountNumber string, userID int64, initialBalance decimal.Decimal, currency string) (*account.Account, error) {
	acc, err := account.NewAccount(accountNumber, userID, initialBalance, currency)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccount retrieves an account by its account number
func (s *BalanceServiceImpl) GetAccount(ctx context.Context, accountNumber string) (*account.Account, error) {
	return s.accountRepo.GetByAccountNumber(ctx, accountNumber)
}

// Credit adds amount to the account balance inside a locked transaction
func (s *BalanceServiceImpl) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*account.Account, error) {
	var result *account.Account

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.accountRepo.WithTx(tx)

		acc, err := repo.LockForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if err := acc.Credit(amount); err != nil {
			return err
		}

		if err := repo.Update(ctx, acc); err != nil {
			return err
		}

		result = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Debit subtracts amount from the account balance inside a locked transaction
func (s *BalanceServiceImpl) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*account.Account, error) {
	var result *account.Account

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.accountRepo.WithTx(tx)

		acc, err := repo.LockForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if err := acc.Debit(amount); err != nil {
			return err
		}

		if err := repo.Update(ctx, acc); err != nil {
			return err
		}

		result = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Transfer moves amount between two accounts in one transaction. Rows are
// locked in ascending account-number order so two opposite transfers cannot
// deadlock each other.
func (s *BalanceServiceImpl) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) error {
	if fromAccount == toAccount {
		return ErrSameAccountTransfer
	}

	return s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.accountRepo.WithTx(tx)

		first, second := fromAccount, toAccount
		if second < first {
			first, second = second, first
		}

		locked := make(map[string]*account.Account, 2)
		for _, number := range []string{first, second} {
			acc, err := repo.LockForUpdate(ctx, number)
			if err != nil {
				return err
			}
			locked[number] = acc
		}

		from := locked[fromAccount]
		to := locked[toAccount]

		if err := from.Debit(amount); err != nil {
			return err
		}
		if err := to.Credit(amount); err != nil {
			return err
		}

		if err := repo.Update(ctx, from); err != nil {
			return err
		}
		if err := repo.Update(ctx, to); err != nil {
			return err
		}

		return nil
	})
}
