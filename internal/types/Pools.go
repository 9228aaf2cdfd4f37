/*

This is a custom type for pools which contains all the accrual state the ledger
tracks per reward pool.

*/

package types

import (
	"cosmossdk.io/math"
)

type PoolID uint64

type Pool struct {
	ID           PoolID `json:"id"`
	StakingAsset Asset  `json:"staking_asset"` // Asset users deposit (principal)
	RewardAsset  Asset  `json:"reward_asset"`  // Asset emissions are paid in

	// AllocationWeight is this pool's share of the global per-block emission.
	// The pool earns weight / totalAllocationWeight of every block's budget.
	AllocationWeight uint64 `json:"allocation_weight"`

	// LastAccrualHeight is the block height the accumulator was last advanced to.
	LastAccrualHeight uint64 `json:"last_accrual_height"`

	// AccRewardPerShare is the cumulative reward per staked unit since pool
	// creation, scaled by 1e12. Monotonically non-decreasing.
	AccRewardPerShare math.Int `json:"acc_reward_per_share"`

	// TotalStaked is the sum of all active positions' principal in this pool.
	TotalStaked math.Int `json:"total_staked"`

	// MinLockSeconds is how long a fresh deposit must remain staked before a
	// normal withdrawal is permitted. Not enforced on the emergency path.
	MinLockSeconds int64 `json:"min_lock_seconds"`

	EmergencyWithdrawEnabled bool `json:"emergency_withdraw_enabled"`
}
