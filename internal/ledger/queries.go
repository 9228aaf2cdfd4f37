package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// PoolCount returns the number of registered pools.
func (l *Ledger) PoolCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pools)
}

// GetPool returns a copy of the pool's current state.
func (l *Ledger) GetPool(id types.PoolID) (types.Pool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, err := l.poolByID(id)
	if err != nil {
		return types.Pool{}, err
	}
	return *pool, nil
}

// Pools returns a copy of every registered pool, ordered by index.
func (l *Ledger) Pools() []types.Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Pool, len(l.pools))
	for i, pool := range l.pools {
		out[i] = *pool
	}
	return out
}

// GetPosition returns a copy of the account's position in the pool. Accounts
// that never deposited get a dormant zero-valued record, not an error.
func (l *Ledger) GetPosition(poolID types.PoolID, account types.Account) (types.Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.poolByID(poolID); err != nil {
		return types.Position{}, err
	}

	if pos := l.position(poolID, account); pos != nil {
		return *pos, nil
	}
	return types.Position{
		PoolID:     poolID,
		Account:    account,
		Amount:     sdkmath.ZeroInt(),
		RewardDebt: sdkmath.ZeroInt(),
	}, nil
}

// PendingReward quotes the reward the account could claim right now. Pure:
// it applies the accrual formula at the current height without mutating
// anything, so quotes may run concurrently with each other.
func (l *Ledger) PendingReward(poolID types.PoolID, account types.Account) (sdkmath.Int, error) {
	height := l.chain.CurrentHeight()

	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, err := l.poolByID(poolID)
	if err != nil {
		return sdkmath.Int{}, err
	}

	pos := l.position(poolID, account)
	if pos == nil {
		return sdkmath.ZeroInt(), nil
	}
	return pendingFor(pos, l.projectedAccPerShare(pool, height)), nil
}

// ActivePositions counts the pool's positions with stake outstanding.
func (l *Ledger) ActivePositions(poolID types.PoolID) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for key, pos := range l.positions {
		if key.pool == poolID && pos.IsActive {
			count++
		}
	}
	return count
}

// Paused reports whether deposits are currently halted.
func (l *Ledger) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused
}

// RewardPerBlock returns the current global emission rate.
func (l *Ledger) RewardPerBlock() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rewardPerBlock
}

// TotalAllocationWeight returns the sum of all pools' allocation weights.
func (l *Ledger) TotalAllocationWeight() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalAllocationWeight
}

// EmergencyWithdrawFeeBps returns the current emergency exit penalty.
func (l *Ledger) EmergencyWithdrawFeeBps() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.emergencyFeeBps
}

// IsAuthorizedRebalancer reports whether the account may call Rebalance.
func (l *Ledger) IsAuthorizedRebalancer(account types.Account) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rebalancers[account]
}
