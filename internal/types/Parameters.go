/*

This file contains the configurable policy parameters for the ledger.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// LedgerParameters holds the tunable global policy knobs of the staking ledger.
// Different versions of these parameters can exist in the database; exactly one
// set is active per config name at a time.
type LedgerParameters struct {
	// RewardPerBlock is the global emission budget per block, shared across all
	// pools proportionally to allocation weight.
	RewardPerBlock sdkmath.Int `json:"reward_per_block"`

	// EmergencyWithdrawFeeBps is the penalty on the emergency exit path, in
	// basis points. Bounded to [0, 1000] (0-10%).
	EmergencyWithdrawFeeBps uint32 `json:"emergency_withdraw_fee_bps"`

	// DefaultMinLockSeconds is the lock period applied to pools registered
	// without an explicit lock override.
	DefaultMinLockSeconds int64 `json:"default_min_lock_seconds"`
}

// MaxEmergencyWithdrawFeeBps caps the emergency exit penalty at 10%.
const MaxEmergencyWithdrawFeeBps uint32 = 1000

// BpsDenominator converts basis points into a fraction.
const BpsDenominator int64 = 10000
