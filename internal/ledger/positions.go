package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// settleReward pays out the position's pending reward, capped at the custody
// balance of the pool's reward asset. If accrued reward exceeds what custody
// holds, only the available amount is paid; the shortfall is not an error and
// is forfeited. On success the reward-debt watermark advances to the current
// accumulator, making the settlement durable on its own: a later failure in
// the same operation cannot cause the settled reward to be paid again.
// Returns the amount actually paid. Callers must hold l.mu for writing.
func (l *Ledger) settleReward(pool *types.Pool, pos *types.Position) (sdkmath.Int, error) {
	pending := pendingFor(pos, pool.AccRewardPerShare)
	if pending.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	payout := pending
	if available := l.chain.CustodyBalance(pool.RewardAsset); available.LT(payout) {
		l.logger.Warn().
			Uint64("pool", uint64(pool.ID)).
			Str("pending", pending.String()).
			Str("available", available.String()).
			Msg("Reward custody short, capping payout")
		payout = available
	}

	if payout.IsPositive() {
		if err := l.chain.TransferOut(pool.RewardAsset, pos.Account, payout); err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("reward payout failed: %w", err)
		}
	}

	pos.RewardDebt = pos.Amount.Mul(pool.AccRewardPerShare).Quo(scale)
	return payout, nil
}

// Deposit stakes amount of the pool's staking asset for account. Any pending
// reward on an existing position is settled and paid before the new principal
// is blended into the reward debt, so fresh capital never dilutes reward that
// was already earned.
func (l *Ledger) Deposit(account types.Account, poolID types.PoolID, amount sdkmath.Int) error {
	if account.IsZero() {
		return ErrInvalidParameter
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}

	height := l.chain.CurrentHeight()
	now := l.chain.CurrentTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, err := l.poolByID(poolID)
	if err != nil {
		return err
	}
	if l.paused {
		return ErrSystemPaused
	}

	l.accruePool(pool, height)

	pos := l.ensurePosition(poolID, account)
	paid, err := l.settleReward(pool, pos)
	if err != nil {
		return err
	}
	if paid.IsPositive() {
		l.emit(types.Event{
			Type:      types.EventRewardClaimed,
			Timestamp: now,
			Height:    height,
			PoolID:    poolID,
			Account:   account,
			Amount:    paid,
		})
	}

	// Settlement above is durable on its own; a failure here aborts only the
	// principal leg.
	if err := l.chain.TransferIn(pool.StakingAsset, account, amount); err != nil {
		return fmt.Errorf("principal transfer failed: %w", err)
	}

	pos.Amount = pos.Amount.Add(amount)
	pos.RewardDebt = pos.Amount.Mul(pool.AccRewardPerShare).Quo(scale)
	pos.LockEndTime = lockEnd(now, pool.MinLockSeconds)
	pos.IsActive = true
	pool.TotalStaked = pool.TotalStaked.Add(amount)

	l.emit(types.Event{
		Type:      types.EventDeposit,
		Timestamp: now,
		Height:    height,
		PoolID:    poolID,
		Account:   account,
		Amount:    amount,
	})

	l.logger.Info().
		Uint64("pool", uint64(poolID)).
		Str("account", string(account)).
		Str("amount", amount.String()).
		Str("paidReward", paid.String()).
		Msg("Deposit applied")
	return nil
}

// Withdraw unstakes amount of principal after the lock period has elapsed.
// Pending reward is settled first, exactly as on deposit. Withdrawals are
// deliberately not gated by the pause flag: pausing blocks new capital, never
// exit.
func (l *Ledger) Withdraw(account types.Account, poolID types.PoolID, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}

	height := l.chain.CurrentHeight()
	now := l.chain.CurrentTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, err := l.poolByID(poolID)
	if err != nil {
		return err
	}

	pos := l.position(poolID, account)
	if pos == nil || pos.Amount.LT(amount) {
		return ErrInsufficientPosition
	}
	if now.Before(pos.LockEndTime) {
		return ErrPositionLocked
	}

	l.accruePool(pool, height)

	paid, err := l.settleReward(pool, pos)
	if err != nil {
		return err
	}
	if paid.IsPositive() {
		l.emit(types.Event{
			Type:      types.EventRewardClaimed,
			Timestamp: now,
			Height:    height,
			PoolID:    poolID,
			Account:   account,
			Amount:    paid,
		})
	}

	if err := l.chain.TransferOut(pool.StakingAsset, account, amount); err != nil {
		return fmt.Errorf("principal release failed: %w", err)
	}

	pos.Amount = pos.Amount.Sub(amount)
	pos.RewardDebt = pos.Amount.Mul(pool.AccRewardPerShare).Quo(scale)
	if pos.Amount.IsZero() {
		pos.IsActive = false
	}
	pool.TotalStaked = pool.TotalStaked.Sub(amount)

	l.emit(types.Event{
		Type:      types.EventWithdraw,
		Timestamp: now,
		Height:    height,
		PoolID:    poolID,
		Account:   account,
		Amount:    amount,
	})

	l.logger.Info().
		Uint64("pool", uint64(poolID)).
		Str("account", string(account)).
		Str("amount", amount.String()).
		Str("paidReward", paid.String()).
		Msg("Withdrawal applied")
	return nil
}

// EmergencyWithdraw exits the full position immediately, bypassing both the
// lock period and reward settlement. Pending reward is forfeited without an
// event. The fee share of the principal remains in custody with no defined
// beneficiary; the emitted event records it so a treasury route can be added
// downstream.
func (l *Ledger) EmergencyWithdraw(account types.Account, poolID types.PoolID) error {
	height := l.chain.CurrentHeight()
	now := l.chain.CurrentTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	pool, err := l.poolByID(poolID)
	if err != nil {
		return err
	}
	if !pool.EmergencyWithdrawEnabled {
		return ErrEmergencyDisabled
	}

	pos := l.position(poolID, account)
	if pos == nil || !pos.Amount.IsPositive() {
		return ErrNoActivePosition
	}

	amount := pos.Amount
	fee := amount.
		MulRaw(int64(l.emergencyFeeBps)).
		QuoRaw(types.BpsDenominator)
	payout := amount.Sub(fee)

	if payout.IsPositive() {
		if err := l.chain.TransferOut(pool.StakingAsset, account, payout); err != nil {
			return fmt.Errorf("emergency release failed: %w", err)
		}
	}

	// The full pre-fee amount leaves the pool's books.
	pool.TotalStaked = pool.TotalStaked.Sub(amount)
	pos.Amount = sdkmath.ZeroInt()
	pos.RewardDebt = sdkmath.ZeroInt()
	pos.IsActive = false

	l.emit(types.Event{
		Type:      types.EventEmergencyWithdraw,
		Timestamp: now,
		Height:    height,
		PoolID:    poolID,
		Account:   account,
		Amount:    payout,
		Fee:       fee,
	})

	l.logger.Warn().
		Uint64("pool", uint64(poolID)).
		Str("account", string(account)).
		Str("payout", payout.String()).
		Str("fee", fee.String()).
		Msg("Emergency withdrawal applied")
	return nil
}

// Rebalance is the operator hook for an external optimizer: it accrues the
// pool and emits a rebalance-requested event carrying the target amount. It
// moves no funds and amends no position; acting on the target is entirely the
// consumer's business.
func (l *Ledger) Rebalance(caller types.Account, poolID types.PoolID, account types.Account, targetAmount sdkmath.Int) error {
	if targetAmount.IsNil() || targetAmount.IsNegative() {
		return ErrInvalidAmount
	}

	height := l.chain.CurrentHeight()
	now := l.chain.CurrentTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.rebalancers[caller] {
		return ErrUnauthorized
	}

	pool, err := l.poolByID(poolID)
	if err != nil {
		return err
	}

	pos := l.position(poolID, account)
	if pos == nil || !pos.IsActive {
		return ErrNoActivePosition
	}

	l.accruePool(pool, height)

	l.emit(types.Event{
		Type:      types.EventRebalanceRequested,
		Timestamp: now,
		Height:    height,
		PoolID:    poolID,
		Account:   account,
		Amount:    targetAmount,
		Attributes: map[string]string{
			"requested_by": string(caller),
			"current":      pos.Amount.String(),
		},
	})

	l.logger.Info().
		Uint64("pool", uint64(poolID)).
		Str("account", string(account)).
		Str("target", targetAmount.String()).
		Str("caller", string(caller)).
		Msg("Rebalance requested")
	return nil
}
