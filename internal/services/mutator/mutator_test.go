package mutator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bankledger/internal/infra/metrics"
	"bankledger/internal/repos/accounts"
)

// Validation failures must reject before any store access, so a nil db is
// safe here; the locked read-modify-write path is covered by the postgres
// repo suite.

func TestApplyDeltaRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, nil, metrics.NewCollector())

	_, err := svc.ApplyDelta(context.Background(), "ACC1", decimal.Zero, OpCredit)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.ApplyDelta(context.Background(), "ACC1", decimal.NewFromInt(-5), OpDebit)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyDeltaRejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, nil, metrics.NewCollector())

	_, err := svc.ApplyDelta(context.Background(), "ACC1", decimal.NewFromInt(10), Operation("TRANSFER"))
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestOpenAccountRejectsBadParams(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, nil, metrics.NewCollector())

	_, err := svc.OpenAccount(context.Background(), OpenAccountParams{
		CustomerID:     7,
		InitialDeposit: decimal.NewFromInt(-1),
		Currency:       "USD",
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.OpenAccount(context.Background(), OpenAccountParams{
		CustomerID:     7,
		InitialDeposit: decimal.NewFromInt(100),
	})
	require.Error(t, err)
}

func TestAccountCache(t *testing.T) {
	t.Parallel()

	c := newAccountCache(time.Minute)

	acct := &accounts.Account{
		AccountNumber: "ACC42",
		Balance:       decimal.NewFromFloat(100.00),
		Status:        accounts.StatusActive,
		Currency:      "USD",
	}
	c.put(acct, c.epoch("ACC42"))

	got, ok := c.get("ACC42")
	require.True(t, ok)
	require.True(t, got.Balance.Equal(acct.Balance))

	// A cached copy must not alias the stored entry.
	got.Balance = decimal.Zero
	again, ok := c.get("ACC42")
	require.True(t, ok)
	require.True(t, again.Balance.Equal(decimal.NewFromFloat(100.00)))

	c.invalidate("ACC42")
	_, ok = c.get("ACC42")
	require.False(t, ok)
}

func TestAccountCacheExpiry(t *testing.T) {
	t.Parallel()

	c := newAccountCache(time.Millisecond)
	c.put(&accounts.Account{AccountNumber: "ACC1"}, c.epoch("ACC1"))

	time.Sleep(5 * time.Millisecond)

	_, ok := c.get("ACC1")
	require.False(t, ok)
}

// A put carrying an epoch captured before an invalidation must be dropped:
// the snapshot was read before the commit that bumped the epoch and could
// re-cache a stale balance for the whole TTL.
func TestAccountCacheDropsPutAfterInvalidation(t *testing.T) {
	t.Parallel()

	c := newAccountCache(time.Minute)

	preCommit := &accounts.Account{
		AccountNumber: "ACC1",
		Balance:       decimal.NewFromInt(100),
	}

	epoch := c.epoch("ACC1")
	c.invalidate("ACC1") // a mutation commits between read and put
	c.put(preCommit, epoch)

	_, ok := c.get("ACC1")
	require.False(t, ok)

	// A fresh read observing the post-commit epoch caches normally.
	c.put(preCommit, c.epoch("ACC1"))
	_, ok = c.get("ACC1")
	require.True(t, ok)
}

func TestNewAccountNumberShape(t *testing.T) {
	t.Parallel()

	n := newAccountNumber()
	require.True(t, len(n) > 9)
	require.Equal(t, "ACC", n[:3])
}
