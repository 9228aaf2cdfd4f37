package ledger

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openyield-labs/svm/internal/types"
)

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	err := f.led.Deposit(alice, pool0, sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidAmount)

	err = f.led.Deposit(alice, pool0, sdkmath.NewInt(-5))
	require.ErrorIs(t, err, ErrInvalidAmount)

	// Nothing was mutated.
	pool, err := f.led.GetPool(pool0)
	require.NoError(t, err)
	require.True(t, pool.TotalStaked.IsZero())
	require.Empty(t, f.eventsOfType(types.EventDeposit))
}

func TestDepositRejectsUnknownPool(t *testing.T) {
	f := newFixture(t, defaultParams())
	f.addPool(100, 0)

	err := f.led.Deposit(alice, 7, sdkmath.NewInt(100))
	require.ErrorIs(t, err, ErrInvalidPool)
}

func TestDepositMovesPrincipalIntoCustody(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	f.sim.Fund(stakeAsset, alice, sdkmath.NewInt(1000))
	require.NoError(t, f.led.Deposit(alice, pool0, sdkmath.NewInt(600)))

	require.True(t, f.sim.BalanceOf(stakeAsset, alice).Equal(sdkmath.NewInt(400)))
	require.True(t, f.sim.CustodyBalance(stakeAsset).Equal(sdkmath.NewInt(600)))

	pos, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.True(t, pos.IsActive)
	require.True(t, pos.Amount.Equal(sdkmath.NewInt(600)))

	deposits := f.eventsOfType(types.EventDeposit)
	require.Len(t, deposits, 1)
	require.True(t, deposits[0].Amount.Equal(sdkmath.NewInt(600)))
}

func TestDepositFailsWithoutFunds(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	err := f.led.Deposit(alice, pool0, sdkmath.NewInt(100))
	require.Error(t, err)

	// The failed transfer must not leave a phantom position behind.
	pos, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.False(t, pos.IsActive)
	require.True(t, pos.Amount.IsZero())
	f.requireStakedInvariant(alice)
}

func TestPauseBlocksDepositsOnly(t *testing.T) {
	params := defaultParams()
	params.EmergencyWithdrawFeeBps = 0
	f := newFixture(t, params)
	pool0 := f.addPool(100, 0)
	require.NoError(t, f.led.ToggleEmergencyWithdraw(testOwner, pool0, true))

	f.fundAndDeposit(alice, pool0, 500)
	f.fundAndDeposit(bob, pool0, 500)

	require.NoError(t, f.led.Pause(testOwner))
	require.True(t, f.led.Paused())

	f.sim.Fund(stakeAsset, alice, sdkmath.NewInt(100))
	err := f.led.Deposit(alice, pool0, sdkmath.NewInt(100))
	require.ErrorIs(t, err, ErrSystemPaused)

	// Exit paths stay open while paused.
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(500)))
	require.NoError(t, f.led.EmergencyWithdraw(bob, pool0))

	require.NoError(t, f.led.Unpause(testOwner))
	require.NoError(t, f.led.Deposit(alice, pool0, sdkmath.NewInt(100)))
}

func TestWithdrawEnforcesLockPeriod(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 3600)

	f.fundAndDeposit(alice, pool0, 1000)

	err := f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrPositionLocked)

	// One second short of expiry is still locked.
	f.sim.AdvanceTime(3599 * time.Second)
	err = f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrPositionLocked)

	f.sim.AdvanceTime(1 * time.Second)
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000)))
}

func TestDepositRefreshesLock(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 3600)

	f.fundAndDeposit(alice, pool0, 500)
	f.sim.AdvanceTime(2 * time.Hour)

	// A second deposit restarts the clock for the whole position.
	f.fundAndDeposit(alice, pool0, 500)
	err := f.led.Withdraw(alice, pool0, sdkmath.NewInt(100))
	require.ErrorIs(t, err, ErrPositionLocked)

	f.sim.AdvanceTime(time.Hour)
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(100)))
}

func TestWithdrawRejectsExcessAmount(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	f.fundAndDeposit(alice, pool0, 300)

	err := f.led.Withdraw(alice, pool0, sdkmath.NewInt(301))
	require.ErrorIs(t, err, ErrInsufficientPosition)

	err = f.led.Withdraw(bob, pool0, sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientPosition)

	err = f.led.Withdraw(alice, pool0, sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRoundTripWithZeroAccrualReturnsExactPrincipal(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	f.sim.Fund(stakeAsset, alice, sdkmath.NewInt(1234))
	require.NoError(t, f.led.Deposit(alice, pool0, sdkmath.NewInt(1234)))

	// Same height, lock already expired: principal comes back untouched and
	// no reward is paid.
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(1234)))

	require.True(t, f.sim.BalanceOf(stakeAsset, alice).Equal(sdkmath.NewInt(1234)))
	require.Empty(t, f.eventsOfType(types.EventRewardClaimed))

	pos, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.False(t, pos.IsActive)
	require.True(t, pos.Amount.IsZero())
	f.requireStakedInvariant(alice)
}

func TestSequentialDepositsSettleBeforeBlending(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)
	pool0 := f.addPool(100, 0)

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	// Reward for the first 10 blocks belongs entirely to the first deposit.
	expected, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, expected.Equal(sdkmath.NewInt(10_000)))

	rewardBefore := f.sim.BalanceOf(rewardAsset, alice)
	f.fundAndDeposit(alice, pool0, 9000)

	// The second deposit settled and paid the pending reward first.
	claims := f.eventsOfType(types.EventRewardClaimed)
	require.Len(t, claims, 1)
	require.True(t, claims[0].Amount.Equal(expected))
	require.True(t, f.sim.BalanceOf(rewardAsset, alice).Sub(rewardBefore).Equal(expected))

	// And the enlarged position starts from a clean slate.
	pending, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.IsZero())
}

func TestFailedDepositDoesNotRepaySettledReward(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)
	pool0 := f.addPool(100, 0)

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	earned, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, earned.Equal(sdkmath.NewInt(10_000)))

	// The second deposit settles and pays the pending reward, then fails on
	// the principal transfer: alice has no staking-asset balance left.
	err = f.led.Deposit(alice, pool0, sdkmath.NewInt(500))
	require.Error(t, err)
	require.True(t, f.sim.BalanceOf(rewardAsset, alice).Equal(earned))

	// The settlement must be on the books despite the abort. A retry with
	// funds pays nothing extra.
	pending, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.IsZero())

	f.fundAndDeposit(alice, pool0, 500)
	require.True(t, f.sim.BalanceOf(rewardAsset, alice).Equal(earned),
		"retry after failed deposit paid the same reward twice")

	claims := f.eventsOfType(types.EventRewardClaimed)
	require.Len(t, claims, 1)
	require.True(t, claims[0].Amount.Equal(earned))
	f.requireStakedInvariant(alice)
}

func TestFailedWithdrawDoesNotRepaySettledReward(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)

	// Staking and reward asset are the same, so the capped reward payout can
	// drain the custody that backs the principal.
	pool0, err := f.led.AddPool(testOwner, stakeAsset, stakeAsset, 100, 0)
	require.NoError(t, err)

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	// Pending is 10000 but custody holds only the 1000 principal: the payout
	// is capped to 1000, emptying custody, and the principal release fails.
	err = f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000))
	require.Error(t, err)
	require.True(t, f.sim.BalanceOf(stakeAsset, alice).Equal(sdkmath.NewInt(1000)))

	// The position survives the abort and the settled reward cannot be paid
	// again once custody is topped back up.
	pos, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.True(t, pos.IsActive)
	require.True(t, pos.Amount.Equal(sdkmath.NewInt(1000)))
	f.requireStakedInvariant(alice)

	f.sim.FundCustody(stakeAsset, sdkmath.NewInt(1000))
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000)))
	require.True(t, f.sim.BalanceOf(stakeAsset, alice).Equal(sdkmath.NewInt(2000)))

	claims := f.eventsOfType(types.EventRewardClaimed)
	require.Len(t, claims, 1)
	require.True(t, claims[0].Amount.Equal(sdkmath.NewInt(1000)))
}

func TestTotalStakedTracksActivePositions(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	f.fundAndDeposit(alice, pool0, 1000)
	f.fundAndDeposit(bob, pool0, 700)
	f.requireStakedInvariant(alice, bob)

	f.sim.AdvanceHeight(4)
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(400)))
	f.requireStakedInvariant(alice, bob)

	require.NoError(t, f.led.Withdraw(bob, pool0, sdkmath.NewInt(700)))
	f.requireStakedInvariant(alice, bob)

	pool, err := f.led.GetPool(pool0)
	require.NoError(t, err)
	require.True(t, pool.TotalStaked.Equal(sdkmath.NewInt(600)))
}

func TestEmergencyWithdrawFeeMath(t *testing.T) {
	params := defaultParams()
	params.EmergencyWithdrawFeeBps = 250 // 2.5%
	f := newFixture(t, params)
	pool0 := f.addPool(100, 3600)
	require.NoError(t, f.led.ToggleEmergencyWithdraw(testOwner, pool0, true))

	f.fundAndDeposit(alice, pool0, 10007)
	f.sim.AdvanceHeight(10)

	// fee = floor(10007 * 250 / 10000) = 250, payout = 9757. The lock period
	// has not elapsed and pending reward exists; both are bypassed.
	require.NoError(t, f.led.EmergencyWithdraw(alice, pool0))

	require.True(t, f.sim.BalanceOf(stakeAsset, alice).Equal(sdkmath.NewInt(9757)))
	require.True(t, f.sim.BalanceOf(rewardAsset, alice).IsZero())
	require.Empty(t, f.eventsOfType(types.EventRewardClaimed))

	exits := f.eventsOfType(types.EventEmergencyWithdraw)
	require.Len(t, exits, 1)
	require.True(t, exits[0].Amount.Equal(sdkmath.NewInt(9757)))
	require.True(t, exits[0].Fee.Equal(sdkmath.NewInt(250)))

	pos, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.False(t, pos.IsActive)
	require.True(t, pos.Amount.IsZero())
	require.True(t, pos.RewardDebt.IsZero())

	// The full pre-fee amount left the pool's books; the fee stays in custody.
	pool, err := f.led.GetPool(pool0)
	require.NoError(t, err)
	require.True(t, pool.TotalStaked.IsZero())
	require.True(t, f.sim.CustodyBalance(stakeAsset).Equal(sdkmath.NewInt(250)))
	f.requireStakedInvariant(alice)
}

func TestEmergencyWithdrawRequiresEnabledPool(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	f.fundAndDeposit(alice, pool0, 100)

	err := f.led.EmergencyWithdraw(alice, pool0)
	require.ErrorIs(t, err, ErrEmergencyDisabled)
}

func TestEmergencyWithdrawRequiresActivePosition(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	require.NoError(t, f.led.ToggleEmergencyWithdraw(testOwner, pool0, true))

	err := f.led.EmergencyWithdraw(alice, pool0)
	require.ErrorIs(t, err, ErrNoActivePosition)
}

func TestRewardPayoutCappedByCustodyBalance(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)

	// Register the pool directly so custody holds only a sliver of reward.
	pool0, err := f.led.AddPool(testOwner, stakeAsset, rewardAsset, 100, 0)
	require.NoError(t, err)
	f.sim.FundCustody(rewardAsset, sdkmath.NewInt(300))

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	pending, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.Equal(sdkmath.NewInt(10_000)))

	// Accrued 10000 but custody holds 300: the payout is silently capped.
	require.NoError(t, f.led.Withdraw(alice, pool0, sdkmath.NewInt(1000)))
	require.True(t, f.sim.BalanceOf(rewardAsset, alice).Equal(sdkmath.NewInt(300)))

	claims := f.eventsOfType(types.EventRewardClaimed)
	require.Len(t, claims, 1)
	require.True(t, claims[0].Amount.Equal(sdkmath.NewInt(300)))
}
