/*

This file contains the position type: one account's stake record within a single
pool, including the reward-debt bookkeeping that prevents double payment.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Position is keyed by (PoolID, Account). Positions are created implicitly on
// first deposit and never deleted; when the staked amount returns to zero the
// position goes dormant (IsActive = false) but stays queryable.
type Position struct {
	PoolID  PoolID  `json:"pool_id"`
	Account Account `json:"account"`

	// Amount is the currently staked principal.
	Amount sdkmath.Int `json:"amount"`

	// RewardDebt equals Amount * pool.AccRewardPerShare / 1e12 as of the last
	// settlement. Rewards below this watermark have already been paid.
	RewardDebt sdkmath.Int `json:"reward_debt"`

	// LockEndTime is the wall-clock instant before which normal withdrawal is
	// rejected. Refreshed on every deposit.
	LockEndTime time.Time `json:"lock_end_time"`

	IsActive bool `json:"is_active"`
}
