package ledger

import (
	"context"
	stderrors "errors"

	"tally/internal/errors"
	"tally/internal/locker"
	"tally/internal/models"
	"tally/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	locks     *locker.KeyedLock
	gateway   StorageGateway
	resolver  WalletResolver
	policy    PolicyProvider
	books     *Bookkeeper
	checker   *ConsistencyChecker
	batch     *BatchProcessor
	assembler *Assembler
	metrics   MetricsCollector
	log       *zap.Logger
}

// NewService creates the ledger service. Gateway, cache and resolver are
// required; a nil policy applies no discounts or fees, a nil metrics
// collector and logger default to no-ops.
func NewService(
	gateway StorageGateway,
	cache BalanceCache,
	resolver WalletResolver,
	policy PolicyProvider,
	metrics MetricsCollector,
	log *zap.Logger,
) Service {
	if gateway == nil {
		panic("storage gateway is required")
	}
	if cache == nil {
		panic("balance cache is required")
	}
	if resolver == nil {
		panic("wallet resolver is required")
	}
	if policy == nil {
		policy = zeroPolicy{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	books := NewBookkeeper(cache, gateway)
	return &service{
		locks:     locker.New(),
		gateway:   gateway,
		resolver:  resolver,
		policy:    policy,
		books:     books,
		checker:   NewConsistencyChecker(books),
		batch:     NewBatchProcessor(gateway, books, log),
		assembler: NewAssembler(),
		metrics:   metrics,
		log:       log,
	}
}

// zeroPolicy is the default PolicyProvider: no discount, no fee.
type zeroPolicy struct{}

func (zeroPolicy) Discount(_, _ *models.Wallet) decimal.Decimal          { return decimal.Zero }
func (zeroPolicy) Fee(_ *models.Wallet, _ decimal.Decimal) decimal.Decimal { return decimal.Zero }

func walletKey(walletID string) string {
	return "wallet:" + walletID
}

func (s *service) Deposit(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error) {
	w, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var created *models.Transaction
	err = s.locks.Do(walletKey(w.ID), func() error {
		if err := s.checker.CheckPositive(amount); err != nil {
			return err
		}
		created, err = s.apply(ctx, w, models.TransactionTypeDeposit, amount, meta, confirmed)
		return err
	})
	s.record("deposit", err)
	return created, err
}

func (s *service) Withdraw(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error) {
	w, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var created *models.Transaction
	err = s.locks.Do(walletKey(w.ID), func() error {
		if err := s.checker.CheckPositive(amount); err != nil {
			return err
		}
		if err := s.checker.CheckPotential(ctx, w, amount); err != nil {
			return err
		}
		created, err = s.apply(ctx, w, models.TransactionTypeWithdraw, amount, meta, confirmed)
		return err
	})
	s.record("withdraw", err)
	return created, err
}

func (s *service) ForceWithdraw(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error) {
	w, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var created *models.Transaction
	err = s.locks.Do(walletKey(w.ID), func() error {
		if err := s.checker.CheckPositive(amount); err != nil {
			return err
		}
		created, err = s.apply(ctx, w, models.TransactionTypeWithdraw, amount, meta, confirmed)
		return err
	})
	s.record("force_withdraw", err)
	return created, err
}

func (s *service) Transfer(ctx context.Context, from, to WalletRef, amount decimal.Decimal, meta models.JSON, status string) (*models.Transfer, error) {
	return s.transfer(ctx, from, to, amount, meta, status, true)
}

func (s *service) ForceTransfer(ctx context.Context, from, to WalletRef, amount decimal.Decimal, meta models.JSON, status string) (*models.Transfer, error) {
	return s.transfer(ctx, from, to, amount, meta, status, false)
}

func (s *service) Balance(ctx context.Context, ref WalletRef) (decimal.Decimal, error) {
	w, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}

	var bal decimal.Decimal
	err = s.locks.Do(walletKey(w.ID), func() error {
		bal, err = s.books.Balance(ctx, w.ID)
		return err
	})
	return bal, err
}

// apply assembles and persists a single-record batch. Callers hold the
// wallet's lock and have already validated the amount.
func (s *service) apply(ctx context.Context, w *models.Wallet, txType string, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error) {
	tx, err := s.assembler.NewTransaction(OperationDescriptor{
		WalletID:  w.ID,
		Type:      txType,
		Amount:    amount,
		Confirmed: confirmed,
		Meta:      meta,
	})
	if err != nil {
		return nil, err
	}

	persisted, err := s.batch.MakeTransactions(ctx, map[string]*models.Transaction{tx.ID: tx})
	if err != nil {
		return nil, err
	}
	return persisted[tx.ID], nil
}

// transfer runs the shared transfer path. Both wallets' locks are held for
// the whole call, so the sufficiency check on the checked path cannot race
// with other balance-affecting operations on either wallet. The withdraw
// and deposit transactions are persisted together in one atomic batch.
func (s *service) transfer(ctx context.Context, from, to WalletRef, amount decimal.Decimal, meta models.JSON, status string, checked bool) (*models.Transfer, error) {
	op := "force_transfer"
	if checked {
		op = "transfer"
	}

	fw, err := s.resolver.Resolve(ctx, from)
	if err != nil {
		return nil, err
	}
	tw, err := s.resolver.Resolve(ctx, to)
	if err != nil {
		return nil, err
	}

	var created *models.Transfer
	err = s.locks.DoMulti([]string{walletKey(fw.ID), walletKey(tw.ID)}, func() error {
		if err := s.checker.CheckPositive(amount); err != nil {
			return err
		}

		discount := s.policy.Discount(fw, tw)
		fee := s.policy.Fee(tw, amount)
		// A discount larger than the amount clamps the effective amount to
		// zero; the transfer still creates full records with the fee applied.
		effective := money.FloorAtZero(amount, discount)
		debit := money.Add(effective, fee)

		if checked {
			if err := s.checker.CheckPotential(ctx, fw, debit); err != nil {
				return err
			}
		}

		withdrawTx, err := s.assembler.NewTransaction(OperationDescriptor{
			WalletID:  fw.ID,
			Type:      models.TransactionTypeWithdraw,
			Amount:    debit,
			Confirmed: true,
			Meta:      meta,
		})
		if err != nil {
			return err
		}
		depositTx, err := s.assembler.NewTransaction(OperationDescriptor{
			WalletID:  tw.ID,
			Type:      models.TransactionTypeDeposit,
			Amount:    effective,
			Confirmed: true,
			Meta:      meta,
		})
		if err != nil {
			return err
		}

		persisted, err := s.batch.MakeTransactions(ctx, map[string]*models.Transaction{
			withdrawTx.ID: withdrawTx,
			depositTx.ID:  depositTx,
		})
		if err != nil {
			return err
		}

		tr, err := s.assembler.NewTransfer(TransferDescriptor{
			FromWalletID: fw.ID,
			ToWalletID:   tw.ID,
			Status:       status,
			Discount:     discount,
			Fee:          fee,
			Deposit:      persisted[depositTx.ID],
			Withdraw:     persisted[withdrawTx.ID],
		})
		if err != nil {
			return err
		}

		transfers, err := s.batch.MakeTransfers(ctx, map[string]*models.Transfer{tr.ID: tr})
		if err != nil {
			return err
		}
		created = transfers[tr.ID]
		return nil
	})
	s.record(op, err)
	return created, err
}

func (s *service) record(op string, err error) {
	if err == nil {
		s.metrics.RecordOperationResult(op, "ok")
		return
	}

	var derr *errors.DomainError
	if stderrors.As(err, &derr) {
		s.metrics.RecordError(op, derr.Code)
	} else {
		s.metrics.RecordError(op, "storage_failure")
	}
	s.metrics.RecordOperationResult(op, "error")
}
