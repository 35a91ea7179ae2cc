package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/repositories/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory StorageGateway with injectable failures.
type fakeGateway struct {
	mu           sync.Mutex
	transactions map[string]*models.Transaction
	transfers    map[string]*models.Transfer
	balances     map[string]decimal.Decimal
	failInsert   error
	failUpdate   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		transactions: make(map[string]*models.Transaction),
		transfers:    make(map[string]*models.Transfer),
		balances:     make(map[string]decimal.Decimal),
	}
}

func (g *fakeGateway) InsertTransactions(_ context.Context, batch map[string]*models.Transaction) (*TransactionInsertResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failInsert != nil {
		return nil, g.failInsert
	}

	result := &TransactionInsertResult{
		Records:  make(map[string]*models.Transaction, len(batch)),
		Inserted: make(map[string]bool),
	}
	for id, record := range batch {
		if stored, ok := g.transactions[id]; ok {
			result.Records[id] = stored
			continue
		}
		clone := *record
		g.transactions[id] = &clone
		result.Records[id] = &clone
		result.Inserted[id] = true
	}
	return result, nil
}

func (g *fakeGateway) InsertTransfers(_ context.Context, batch map[string]*models.Transfer) (*TransferInsertResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failInsert != nil {
		return nil, g.failInsert
	}

	result := &TransferInsertResult{
		Records:  make(map[string]*models.Transfer, len(batch)),
		Inserted: make(map[string]bool),
	}
	for id, record := range batch {
		if stored, ok := g.transfers[id]; ok {
			result.Records[id] = stored
			continue
		}
		clone := *record
		g.transfers[id] = &clone
		result.Records[id] = &clone
		result.Inserted[id] = true
	}
	return result, nil
}

func (g *fakeGateway) ReadBalance(_ context.Context, walletID string) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[walletID], nil
}

func (g *fakeGateway) UpdateBalance(_ context.Context, walletID string, balance decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failUpdate != nil {
		return g.failUpdate
	}
	g.balances[walletID] = balance
	return nil
}

func (g *fakeGateway) transactionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transactions)
}

func (g *fakeGateway) transferCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transfers)
}

func (g *fakeGateway) balance(walletID string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[walletID]
}

// sumConfirmed recomputes a wallet's balance from the persisted record set.
func (g *fakeGateway) sumConfirmed(walletID string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()

	total := decimal.Zero
	for _, tx := range g.transactions {
		if tx.WalletID == walletID && tx.Confirmed {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// staticResolver resolves refs against a fixed wallet set.
type staticResolver struct {
	wallets map[string]*models.Wallet
}

func (r *staticResolver) Resolve(_ context.Context, ref WalletRef) (*models.Wallet, error) {
	if w := ref.Wallet(); w != nil {
		return w, nil
	}
	if w, ok := r.wallets[ref.WalletID()]; ok {
		return w, nil
	}
	for _, w := range r.wallets {
		if w.HolderID == ref.HolderID() && ref.HolderID() != "" {
			return w, nil
		}
	}
	return nil, apperrors.ErrWalletNotFound
}

type fixedPolicy struct {
	discount decimal.Decimal
	fee      decimal.Decimal
}

func (p *fixedPolicy) Discount(_, _ *models.Wallet) decimal.Decimal          { return p.discount }
func (p *fixedPolicy) Fee(_ *models.Wallet, _ decimal.Decimal) decimal.Decimal { return p.fee }

type testEnv struct {
	svc      Service
	gateway  *fakeGateway
	cache    *cache.MemoryBalanceCache
	resolver *staticResolver
}

func newTestEnv(t *testing.T, policy PolicyProvider, wallets ...*models.Wallet) *testEnv {
	t.Helper()

	gateway := newFakeGateway()
	resolver := &staticResolver{wallets: make(map[string]*models.Wallet)}
	for _, w := range wallets {
		resolver.wallets[w.ID] = w
		gateway.balances[w.ID] = w.Balance
	}

	balanceCache := cache.NewMemoryBalanceCache()
	return &testEnv{
		svc:      NewService(gateway, balanceCache, resolver, policy, nil, nil),
		gateway:  gateway,
		cache:    balanceCache,
		resolver: resolver,
	}
}

func newWallet(id string, balance string, scale int32) *models.Wallet {
	return &models.Wallet{
		ID:       id,
		HolderID: "holder-" + id,
		Balance:  decimal.RequireFromString(balance),
		Scale:    scale,
	}
}

func cachedBalance(t *testing.T, c *cache.MemoryBalanceCache, walletID string) decimal.Decimal {
	t.Helper()
	bal, found, err := c.GetBalance(context.Background(), walletID)
	require.NoError(t, err)
	require.True(t, found, "no cached balance for %s", walletID)
	return bal
}

func TestDeposit(t *testing.T) {
	w := newWallet("w1", "0", 2)
	env := newTestEnv(t, nil, w)

	tx, err := env.svc.Deposit(context.Background(), RefByID("w1"), decimal.RequireFromString("25.50"), nil, true)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeDeposit, tx.Type)
	assert.Equal(t, "w1", tx.WalletID)
	assert.True(t, tx.Confirmed)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.NotEmpty(t, tx.ID)

	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("25.50")))
	assert.True(t, cachedBalance(t, env.cache, "w1").Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 1, env.gateway.transactionCount())
}

func TestDepositUnconfirmedDoesNotAffectBalance(t *testing.T) {
	w := newWallet("w1", "10", 2)
	env := newTestEnv(t, nil, w)

	_, err := env.svc.Deposit(context.Background(), RefByID("w1"), decimal.NewFromInt(5), nil, false)
	require.NoError(t, err)

	assert.True(t, env.gateway.balance("w1").Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, env.gateway.transactionCount())
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2))

	for _, amount := range []string{"0", "-1"} {
		_, err := env.svc.Deposit(context.Background(), RefByID("w1"), decimal.RequireFromString(amount), nil, true)
		assert.ErrorIs(t, err, apperrors.ErrAmountInvalid, "amount %s", amount)
	}
	assert.Equal(t, 0, env.gateway.transactionCount())
}

func TestWithdrawChecksAvailableBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		wantErr error
	}{
		{"empty balance", "0", "5", apperrors.ErrBalanceIsEmpty},
		{"insufficient funds", "10", "20", apperrors.ErrInsufficientFunds},
		{"non-positive amount", "10", "0", apperrors.ErrAmountInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, newWallet("w1", tt.balance, 2))

			_, err := env.svc.Withdraw(context.Background(), RefByID("w1"), decimal.RequireFromString(tt.amount), nil, true)
			assert.ErrorIs(t, err, tt.wantErr)

			// A failed check leaves all state untouched.
			assert.Equal(t, 0, env.gateway.transactionCount())
			assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString(tt.balance)))
		})
	}
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "100.00", 2))

	tx, err := env.svc.Withdraw(context.Background(), RefByID("w1"), decimal.RequireFromString("30.00"), nil, true)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeWithdraw, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-30.00")))
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("70.00")))
}

func TestForceWithdrawBypassesSufficiencyCheck(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2))

	tx, err := env.svc.ForceWithdraw(context.Background(), RefByID("w1"), decimal.NewFromInt(10), nil, true)
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-10)))
	assert.True(t, env.gateway.balance("w1").Equal(decimal.NewFromInt(-10)))
}

func TestForceWithdrawStillRequiresPositiveAmount(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2))

	_, err := env.svc.ForceWithdraw(context.Background(), RefByID("w1"), decimal.Zero, nil, true)
	assert.ErrorIs(t, err, apperrors.ErrAmountInvalid)
	assert.Equal(t, 0, env.gateway.transactionCount())
}

func TestTransferEndToEnd(t *testing.T) {
	w1 := newWallet("w1", "100.00", 2)
	w2 := newWallet("w2", "0.00", 2)
	env := newTestEnv(t, nil, w1, w2)

	tr, err := env.svc.Transfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.RequireFromString("40.00"), nil, models.TransferStatusTransfer)
	require.NoError(t, err)

	assert.Equal(t, models.TransferStatusTransfer, tr.Status)
	assert.Equal(t, "w1", tr.FromWalletID)
	assert.Equal(t, "w2", tr.ToWalletID)
	assert.True(t, tr.Discount.IsZero())
	assert.True(t, tr.Fee.IsZero())

	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("60.00")))
	assert.True(t, env.gateway.balance("w2").Equal(decimal.RequireFromString("40.00")))

	require.Equal(t, 2, env.gateway.transactionCount())
	require.Equal(t, 1, env.gateway.transferCount())

	deposit := env.gateway.transactions[tr.DepositID]
	withdraw := env.gateway.transactions[tr.WithdrawID]
	require.NotNil(t, deposit)
	require.NotNil(t, withdraw)
	assert.Equal(t, "w2", deposit.WalletID)
	assert.True(t, deposit.Amount.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, "w1", withdraw.WalletID)
	assert.True(t, withdraw.Amount.Equal(decimal.RequireFromString("-40.00")))
}

func TestTransferInsufficientFundsLeavesStateUntouched(t *testing.T) {
	w1 := newWallet("w1", "10.00", 2)
	w2 := newWallet("w2", "0.00", 2)
	env := newTestEnv(t, nil, w1, w2)

	_, err := env.svc.Transfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.RequireFromString("40.00"), nil, models.TransferStatusTransfer)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	assert.Equal(t, 0, env.gateway.transactionCount())
	assert.Equal(t, 0, env.gateway.transferCount())
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("10.00")))
	assert.True(t, env.gateway.balance("w2").Equal(decimal.RequireFromString("0.00")))
}

func TestTransferAppliesDiscountAndFee(t *testing.T) {
	w1 := newWallet("w1", "100.00", 2)
	w2 := newWallet("w2", "0.00", 2)
	p := &fixedPolicy{
		discount: decimal.RequireFromString("10.00"),
		fee:      decimal.RequireFromString("5.00"),
	}
	env := newTestEnv(t, p, w1, w2)

	tr, err := env.svc.Transfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.RequireFromString("40.00"), nil, models.TransferStatusTransfer)
	require.NoError(t, err)

	// effective = 40 - 10 = 30, source pays effective + fee = 35.
	assert.True(t, tr.Discount.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, tr.Fee.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("65.00")))
	assert.True(t, env.gateway.balance("w2").Equal(decimal.RequireFromString("30.00")))

	withdraw := env.gateway.transactions[tr.WithdrawID]
	deposit := env.gateway.transactions[tr.DepositID]
	assert.True(t, withdraw.Amount.Neg().Equal(deposit.Amount.Add(tr.Fee)))
}

func TestTransferDiscountExceedingAmountClampsToZero(t *testing.T) {
	w1 := newWallet("w1", "100.00", 2)
	w2 := newWallet("w2", "0.00", 2)
	p := &fixedPolicy{
		discount: decimal.RequireFromString("50.00"),
		fee:      decimal.RequireFromString("2.00"),
	}
	env := newTestEnv(t, p, w1, w2)

	tr, err := env.svc.ForceTransfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.RequireFromString("40.00"), nil, models.TransferStatusTransfer)
	require.NoError(t, err)

	// Effective amount clamps to zero; the fee is still charged and full
	// records are created.
	require.Equal(t, 2, env.gateway.transactionCount())
	require.Equal(t, 1, env.gateway.transferCount())
	deposit := env.gateway.transactions[tr.DepositID]
	assert.True(t, deposit.Amount.IsZero())
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("98.00")))
	assert.True(t, env.gateway.balance("w2").Equal(decimal.RequireFromString("0.00")))
}

func TestForceTransferBypassesSufficiencyCheck(t *testing.T) {
	w1 := newWallet("w1", "0.00", 2)
	w2 := newWallet("w2", "0.00", 2)
	env := newTestEnv(t, nil, w1, w2)

	_, err := env.svc.ForceTransfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.RequireFromString("25.00"), nil, models.TransferStatusGift)
	require.NoError(t, err)

	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("-25.00")))
	assert.True(t, env.gateway.balance("w2").Equal(decimal.RequireFromString("25.00")))
}

func TestResolveByHolderAndByRecord(t *testing.T) {
	w := newWallet("w1", "0", 2)
	env := newTestEnv(t, nil, w)

	_, err := env.svc.Deposit(context.Background(), RefByHolder(w.HolderID), decimal.NewFromInt(1), nil, true)
	require.NoError(t, err)

	_, err = env.svc.Deposit(context.Background(), RefOf(w), decimal.NewFromInt(1), nil, true)
	require.NoError(t, err)

	_, err = env.svc.Deposit(context.Background(), RefByID("missing"), decimal.NewFromInt(1), nil, true)
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestRecoveryResyncsCacheOnBalanceWriteFailure(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "50.00", 2))
	diskFull := errors.New("disk full")

	// Prime the cache, then make the durable balance write fail.
	_, err := env.svc.Balance(context.Background(), RefByID("w1"))
	require.NoError(t, err)
	env.gateway.failUpdate = diskFull

	_, err = env.svc.Deposit(context.Background(), RefByID("w1"), decimal.NewFromInt(10), nil, true)
	assert.ErrorIs(t, err, diskFull)

	// The batch insert itself succeeded; the cached balance must be back at
	// the authoritative stored value, not the optimistic one.
	assert.Equal(t, 1, env.gateway.transactionCount())
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("50.00")))
	assert.True(t, cachedBalance(t, env.cache, "w1").Equal(decimal.RequireFromString("50.00")))
}

func TestStorageFailureDuringInsertPropagates(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "50.00", 2))
	boom := errors.New("connection reset")
	env.gateway.failInsert = boom

	_, err := env.svc.Deposit(context.Background(), RefByID("w1"), decimal.NewFromInt(10), nil, true)
	assert.ErrorIs(t, err, boom)
	assert.True(t, env.gateway.balance("w1").Equal(decimal.RequireFromString("50.00")))
}

func TestConcurrentDepositsOnSameWallet(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Deposit(context.Background(), RefByID("w1"), decimal.NewFromInt(1), nil, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, env.gateway.balance("w1").Equal(decimal.NewFromInt(n)),
		"got %s", env.gateway.balance("w1"))
	assert.Equal(t, n, env.gateway.transactionCount())
}

func TestConcurrentOppositeTransfersConserveTotal(t *testing.T) {
	w1 := newWallet("w1", "1000.00", 2)
	w2 := newWallet("w2", "1000.00", 2)
	env := newTestEnv(t, nil, w1, w2)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.svc.Transfer(context.Background(), RefByID("w1"), RefByID("w2"),
				decimal.NewFromInt(1), nil, models.TransferStatusTransfer)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := env.svc.Transfer(context.Background(), RefByID("w2"), RefByID("w1"),
				decimal.NewFromInt(1), nil, models.TransferStatusTransfer)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total := env.gateway.balance("w1").Add(env.gateway.balance("w2"))
	assert.True(t, total.Equal(decimal.RequireFromString("2000.00")), "got %s", total)
}

func TestBalanceMatchesRecomputationFromRecords(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2))
	ctx := context.Background()

	_, err := env.svc.Deposit(ctx, RefByID("w1"), decimal.RequireFromString("100.00"), nil, true)
	require.NoError(t, err)
	_, err = env.svc.Withdraw(ctx, RefByID("w1"), decimal.RequireFromString("33.33"), nil, true)
	require.NoError(t, err)
	_, err = env.svc.Deposit(ctx, RefByID("w1"), decimal.RequireFromString("0.01"), nil, false)
	require.NoError(t, err)
	_, err = env.svc.ForceWithdraw(ctx, RefByID("w1"), decimal.RequireFromString("80.00"), nil, true)
	require.NoError(t, err)

	recomputed := env.gateway.sumConfirmed("w1")
	assert.True(t, cachedBalance(t, env.cache, "w1").Equal(recomputed),
		"cache %s vs recomputed %s", cachedBalance(t, env.cache, "w1"), recomputed)
	assert.True(t, env.gateway.balance("w1").Equal(recomputed))
}

func TestServiceBalancePrimesCache(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "12.34", 2))

	bal, err := env.svc.Balance(context.Background(), RefByID("w1"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("12.34")))
	assert.True(t, cachedBalance(t, env.cache, "w1").Equal(bal))
}

// Guards against accidental uuid reuse across assembled records.
func TestAssembledIDsAreUnique(t *testing.T) {
	env := newTestEnv(t, nil, newWallet("w1", "0", 2), newWallet("w2", "0", 2))

	tr, err := env.svc.ForceTransfer(context.Background(), RefByID("w1"), RefByID("w2"),
		decimal.NewFromInt(1), nil, models.TransferStatusTransfer)
	require.NoError(t, err)

	ids := map[string]bool{tr.ID: true, tr.DepositID: true, tr.WithdrawID: true}
	assert.Len(t, ids, 3)
	for id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
}
