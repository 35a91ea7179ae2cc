/*
Package ledger implements the transactional wallet ledger core.

The service exposes five primitive operations: Deposit, Withdraw,
ForceWithdraw, Transfer and ForceTransfer. Every operation runs as a single
sequence under the wallet's lock:

	acquire lock -> validate -> assemble -> persist batch -> update cache -> release

Records are immutable once created: the only write path is an idempotent
insert keyed by uuid, so replaying a batch never double-applies. The cached
balance is the only shared mutable state; it is written exclusively by the
Bookkeeper while the wallet's lock is held, and is resynchronized from the
authoritative stored balance whenever a durable write cannot be confirmed.

Usage:

	svc := ledger.NewService(gateway, cache, resolver, policy, nil, logger)

	tx, err := svc.Deposit(ctx, ledger.RefByID(walletID), amount, meta, true)

	tr, err := svc.Transfer(ctx, ledger.RefByID(from), ledger.RefByID(to),
		amount, meta, models.TransferStatusTransfer)

Collaborators (storage, balance cache, fee/discount policy, wallet
resolution) are consumed through the interfaces in this package; the
implementations live in internal/repositories and internal/services/policy.
*/
package ledger
