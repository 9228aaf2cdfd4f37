package ledger

import (
	"strconv"

	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// requireOwner is the explicit authorization predicate for owner-gated
// operations. Callers must hold l.mu.
func (l *Ledger) requireOwner(caller types.Account) error {
	if caller != l.owner {
		return ErrUnauthorized
	}
	return nil
}

// AddPool registers a new reward pool and assigns it the next sequential
// index. Indices are permanent: pools are never removed or reordered. All
// existing pools are accrued first so the weight change only affects future
// intervals. A negative minLockSeconds selects the configured default lock.
func (l *Ledger) AddPool(caller types.Account, stakingAsset, rewardAsset types.Asset, allocationWeight uint64, minLockSeconds int64) (types.PoolID, error) {
	if stakingAsset.IsZero() || rewardAsset.IsZero() {
		return 0, ErrInvalidParameter
	}

	height := l.chain.CurrentHeight()
	now := l.chain.CurrentTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return 0, err
	}

	if minLockSeconds < 0 {
		minLockSeconds = l.defaultMinLockSeconds
	}

	l.accrueAll(height)

	pool := &types.Pool{
		ID:                types.PoolID(len(l.pools)),
		StakingAsset:      stakingAsset,
		RewardAsset:       rewardAsset,
		AllocationWeight:  allocationWeight,
		LastAccrualHeight: height,
		AccRewardPerShare: sdkmath.ZeroInt(),
		TotalStaked:       sdkmath.ZeroInt(),
		MinLockSeconds:    minLockSeconds,
	}
	l.pools = append(l.pools, pool)
	l.totalAllocationWeight += allocationWeight

	l.emit(types.Event{
		Type:      types.EventPoolAdded,
		Timestamp: now,
		Height:    height,
		PoolID:    pool.ID,
		Attributes: map[string]string{
			"staking_asset":     string(stakingAsset),
			"reward_asset":      string(rewardAsset),
			"allocation_weight": sdkmath.NewIntFromUint64(allocationWeight).String(),
		},
	})

	l.logger.Info().
		Uint64("pool", uint64(pool.ID)).
		Str("stakingAsset", string(stakingAsset)).
		Str("rewardAsset", string(rewardAsset)).
		Uint64("weight", allocationWeight).
		Msg("Pool registered")
	return pool.ID, nil
}

// SetRewardPerBlock updates the global emission rate. All pools are accrued
// at the old rate first so the change cannot reprice elapsed intervals.
func (l *Ledger) SetRewardPerBlock(caller types.Account, value sdkmath.Int) error {
	if value.IsNil() || value.IsNegative() {
		return ErrInvalidParameter
	}

	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}

	l.accrueAll(height)
	old := l.rewardPerBlock
	l.rewardPerBlock = value

	l.emitPolicyUpdate(height, "reward_per_block", old.String(), value.String())
	return nil
}

// SetEmergencyWithdrawFee updates the emergency exit penalty, bounded to 10%.
func (l *Ledger) SetEmergencyWithdrawFee(caller types.Account, bps uint32) error {
	if bps > types.MaxEmergencyWithdrawFeeBps {
		return ErrInvalidParameter
	}

	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}

	old := l.emergencyFeeBps
	l.emergencyFeeBps = bps

	l.emitPolicyUpdate(height, "emergency_withdraw_fee_bps", formatUint(uint64(old)), formatUint(uint64(bps)))
	return nil
}

// ToggleEmergencyWithdraw enables or disables the emergency exit path for one
// pool.
func (l *Ledger) ToggleEmergencyWithdraw(caller types.Account, poolID types.PoolID, enabled bool) error {
	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}

	pool, err := l.poolByID(poolID)
	if err != nil {
		return err
	}

	old := pool.EmergencyWithdrawEnabled
	pool.EmergencyWithdrawEnabled = enabled

	l.emitPolicyUpdate(height, "emergency_withdraw_enabled:"+formatUint(uint64(poolID)), formatBool(old), formatBool(enabled))
	return nil
}

// SetAuthorizedRebalancer grants or revokes the rebalance-hook privilege.
func (l *Ledger) SetAuthorizedRebalancer(caller types.Account, account types.Account, enabled bool) error {
	if account.IsZero() {
		return ErrInvalidParameter
	}

	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}

	if enabled {
		l.rebalancers[account] = true
	} else {
		delete(l.rebalancers, account)
	}

	l.emitPolicyUpdate(height, "authorized_rebalancer", string(account), formatBool(enabled))
	return nil
}

// Pause halts deposits. Withdrawals, emergency exits, and admin operations
// stay available.
func (l *Ledger) Pause(caller types.Account) error {
	return l.setPaused(caller, true)
}

// Unpause re-enables deposits.
func (l *Ledger) Unpause(caller types.Account) error {
	return l.setPaused(caller, false)
}

func (l *Ledger) setPaused(caller types.Account, paused bool) error {
	height := l.chain.CurrentHeight()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}

	l.paused = paused
	l.emitPolicyUpdate(height, "paused", formatBool(!paused), formatBool(paused))
	return nil
}

func (l *Ledger) emitPolicyUpdate(height uint64, field, previous, current string) {
	l.emit(types.Event{
		Type:   types.EventPolicyUpdated,
		Height: height,
		Attributes: map[string]string{
			"field":    field,
			"previous": previous,
			"current":  current,
		},
	})

	l.logger.Info().
		Str("field", field).
		Str("previous", previous).
		Str("current", current).
		Msg("Policy updated")
}

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }
func formatBool(v bool) string   { return strconv.FormatBool(v) }
