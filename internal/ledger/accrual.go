package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// accruePool advances the pool's reward-per-share accumulator to height.
// Idempotent for the same height. When the pool is empty the height still
// advances and that interval's emission budget is permanently forgone, so an
// empty pool never retroactively credits its first depositor.
//
// Callers must hold l.mu for writing.
func (l *Ledger) accruePool(pool *types.Pool, height uint64) {
	if height <= pool.LastAccrualHeight {
		return
	}
	if pool.TotalStaked.IsZero() || l.totalAllocationWeight == 0 {
		pool.LastAccrualHeight = height
		return
	}

	elapsed := sdkmath.NewIntFromUint64(height - pool.LastAccrualHeight)

	// poolReward = elapsed * rewardPerBlock * weight / totalWeight, truncating.
	// The truncation here is a known source of rounding dust.
	poolReward := elapsed.
		Mul(l.rewardPerBlock).
		Mul(sdkmath.NewIntFromUint64(pool.AllocationWeight)).
		Quo(sdkmath.NewIntFromUint64(l.totalAllocationWeight))

	pool.AccRewardPerShare = pool.AccRewardPerShare.
		Add(poolReward.Mul(scale).Quo(pool.TotalStaked))
	pool.LastAccrualHeight = height
}

// accrueAll advances every pool to height. Used before policy changes that
// would otherwise reprice past intervals, and by the periodic sweep.
// Callers must hold l.mu for writing.
func (l *Ledger) accrueAll(height uint64) {
	for _, pool := range l.pools {
		l.accruePool(pool, height)
	}
}

// AccrueAll refreshes every pool's accumulator to the current chain height.
func (l *Ledger) AccrueAll() {
	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accrueAll(height)
}

// projectedAccPerShare computes the accumulator as if the pool were accrued at
// height, without mutating anything. Callers must hold l.mu (read suffices).
func (l *Ledger) projectedAccPerShare(pool *types.Pool, height uint64) sdkmath.Int {
	if height <= pool.LastAccrualHeight || pool.TotalStaked.IsZero() || l.totalAllocationWeight == 0 {
		return pool.AccRewardPerShare
	}

	elapsed := sdkmath.NewIntFromUint64(height - pool.LastAccrualHeight)
	poolReward := elapsed.
		Mul(l.rewardPerBlock).
		Mul(sdkmath.NewIntFromUint64(pool.AllocationWeight)).
		Quo(sdkmath.NewIntFromUint64(l.totalAllocationWeight))

	return pool.AccRewardPerShare.Add(poolReward.Mul(scale).Quo(pool.TotalStaked))
}

// pendingFor prices a position against an accumulator value. Non-negative
// under correct settlement sequencing.
func pendingFor(pos *types.Position, accPerShare sdkmath.Int) sdkmath.Int {
	if pos == nil || pos.Amount.IsZero() {
		return sdkmath.ZeroInt()
	}
	pending := pos.Amount.Mul(accPerShare).Quo(scale).Sub(pos.RewardDebt)
	if pending.IsNegative() {
		return sdkmath.ZeroInt()
	}
	return pending
}
