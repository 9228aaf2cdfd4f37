package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openyield-labs/svm/internal/types"
)

func TestAddPoolAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t, defaultParams())

	id0, err := f.led.AddPool(testOwner, stakeAsset, rewardAsset, 50, 0)
	require.NoError(t, err)
	id1, err := f.led.AddPool(testOwner, "0xOTHER", rewardAsset, 60, 0)
	require.NoError(t, err)

	require.Equal(t, types.PoolID(0), id0)
	require.Equal(t, types.PoolID(1), id1)
	require.Equal(t, 2, f.led.PoolCount())
	require.Equal(t, uint64(110), f.led.TotalAllocationWeight())

	added := f.eventsOfType(types.EventPoolAdded)
	require.Len(t, added, 2)
}

func TestAddPoolValidation(t *testing.T) {
	f := newFixture(t, defaultParams())

	_, err := f.led.AddPool(testOwner, "", rewardAsset, 50, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.led.AddPool(testOwner, stakeAsset, "", 50, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.led.AddPool(alice, stakeAsset, rewardAsset, 50, 0)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, 0, f.led.PoolCount())
}

func TestAddPoolNegativeLockUsesDefault(t *testing.T) {
	params := defaultParams()
	params.DefaultMinLockSeconds = 7200
	f := newFixture(t, params)

	id, err := f.led.AddPool(testOwner, stakeAsset, rewardAsset, 50, -1)
	require.NoError(t, err)

	pool, err := f.led.GetPool(id)
	require.NoError(t, err)
	require.Equal(t, int64(7200), pool.MinLockSeconds)

	// An explicit zero disables the lock, it does not fall back.
	id, err = f.led.AddPool(testOwner, "0xOTHER", rewardAsset, 50, 0)
	require.NoError(t, err)
	pool, err = f.led.GetPool(id)
	require.NoError(t, err)
	require.Zero(t, pool.MinLockSeconds)
}

func TestAddPoolAccruesExistingPoolsFirst(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)
	pool0 := f.addPool(50, 0)

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	// Pool 0 held the full weight for those 10 blocks. Registering a second
	// pool must not dilute them retroactively.
	_, err := f.led.AddPool(testOwner, "0xOTHER", rewardAsset, 50, 0)
	require.NoError(t, err)

	pending, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.Equal(sdkmath.NewInt(10_000)),
		"pending %s, expected full-weight emission for the elapsed interval", pending)
}

func TestSetRewardPerBlockAppliesOnlyForward(t *testing.T) {
	params := defaultParams()
	params.RewardPerBlock = sdkmath.NewInt(1000)
	f := newFixture(t, params)
	pool0 := f.addPool(100, 0)

	f.fundAndDeposit(alice, pool0, 1000)
	f.sim.AdvanceHeight(10)

	// Doubling the rate repriced nothing behind it.
	require.NoError(t, f.led.SetRewardPerBlock(testOwner, sdkmath.NewInt(2000)))
	pending, err := f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.Equal(sdkmath.NewInt(10_000)))

	f.sim.AdvanceHeight(10)
	pending, err = f.led.PendingReward(pool0, alice)
	require.NoError(t, err)
	require.True(t, pending.Equal(sdkmath.NewInt(30_000)))
}

func TestSetRewardPerBlockValidation(t *testing.T) {
	f := newFixture(t, defaultParams())

	require.ErrorIs(t, f.led.SetRewardPerBlock(alice, sdkmath.NewInt(1)), ErrUnauthorized)
	require.ErrorIs(t, f.led.SetRewardPerBlock(testOwner, sdkmath.NewInt(-1)), ErrInvalidParameter)
	require.NoError(t, f.led.SetRewardPerBlock(testOwner, sdkmath.ZeroInt()))
}

func TestSetEmergencyWithdrawFeeBounds(t *testing.T) {
	f := newFixture(t, defaultParams())

	require.ErrorIs(t, f.led.SetEmergencyWithdrawFee(testOwner, 1001), ErrInvalidParameter)
	require.ErrorIs(t, f.led.SetEmergencyWithdrawFee(alice, 100), ErrUnauthorized)

	require.NoError(t, f.led.SetEmergencyWithdrawFee(testOwner, 1000))
	require.Equal(t, uint32(1000), f.led.EmergencyWithdrawFeeBps())

	require.NoError(t, f.led.SetEmergencyWithdrawFee(testOwner, 0))
	require.Equal(t, uint32(0), f.led.EmergencyWithdrawFeeBps())
}

func TestToggleEmergencyWithdrawIsOwnerGated(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)

	require.ErrorIs(t, f.led.ToggleEmergencyWithdraw(alice, pool0, true), ErrUnauthorized)
	require.ErrorIs(t, f.led.ToggleEmergencyWithdraw(testOwner, 9, true), ErrInvalidPool)

	require.NoError(t, f.led.ToggleEmergencyWithdraw(testOwner, pool0, true))
	pool, err := f.led.GetPool(pool0)
	require.NoError(t, err)
	require.True(t, pool.EmergencyWithdrawEnabled)
}

func TestPauseIsOwnerGated(t *testing.T) {
	f := newFixture(t, defaultParams())

	require.ErrorIs(t, f.led.Pause(alice), ErrUnauthorized)
	require.NoError(t, f.led.Pause(testOwner))
	require.True(t, f.led.Paused())
	require.ErrorIs(t, f.led.Unpause(bob), ErrUnauthorized)
	require.NoError(t, f.led.Unpause(testOwner))
	require.False(t, f.led.Paused())
}

func TestRebalanceRequiresAuthorization(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	f.fundAndDeposit(alice, pool0, 1000)

	err := f.led.Rebalance(testRebalancer, pool0, alice, sdkmath.NewInt(500))
	require.ErrorIs(t, err, ErrUnauthorized)

	require.ErrorIs(t, f.led.SetAuthorizedRebalancer(alice, testRebalancer, true), ErrUnauthorized)
	require.NoError(t, f.led.SetAuthorizedRebalancer(testOwner, testRebalancer, true))
	require.True(t, f.led.IsAuthorizedRebalancer(testRebalancer))

	require.NoError(t, f.led.Rebalance(testRebalancer, pool0, alice, sdkmath.NewInt(500)))

	// Revocation takes effect immediately.
	require.NoError(t, f.led.SetAuthorizedRebalancer(testOwner, testRebalancer, false))
	err = f.led.Rebalance(testRebalancer, pool0, alice, sdkmath.NewInt(500))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRebalanceEmitsEventWithoutMutation(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	require.NoError(t, f.led.SetAuthorizedRebalancer(testOwner, testRebalancer, true))

	f.fundAndDeposit(alice, pool0, 1000)
	before, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)

	f.sim.AdvanceHeight(5)
	require.NoError(t, f.led.Rebalance(testRebalancer, pool0, alice, sdkmath.NewInt(250)))

	requests := f.eventsOfType(types.EventRebalanceRequested)
	require.Len(t, requests, 1)
	require.True(t, requests[0].Amount.Equal(sdkmath.NewInt(250)))
	require.Equal(t, alice, requests[0].Account)
	require.Equal(t, string(testRebalancer), requests[0].Attributes["requested_by"])

	// Only the accumulator moved; the position itself is untouched.
	after, err := f.led.GetPosition(pool0, alice)
	require.NoError(t, err)
	require.True(t, before.Amount.Equal(after.Amount))
	require.True(t, before.RewardDebt.Equal(after.RewardDebt))

	pool, err := f.led.GetPool(pool0)
	require.NoError(t, err)
	require.Equal(t, uint64(105), pool.LastAccrualHeight)
}

func TestRebalanceRequiresActivePosition(t *testing.T) {
	f := newFixture(t, defaultParams())
	pool0 := f.addPool(100, 0)
	require.NoError(t, f.led.SetAuthorizedRebalancer(testOwner, testRebalancer, true))

	err := f.led.Rebalance(testRebalancer, pool0, bob, sdkmath.NewInt(100))
	require.ErrorIs(t, err, ErrNoActivePosition)

	require.ErrorIs(t, f.led.Rebalance(testRebalancer, pool0, bob, sdkmath.NewInt(-1)), ErrInvalidAmount)
}
