/*

This file contains the default policy parameters for the ledger.

These values are used if no active parameter set is found in the database
during initialization; the first startup persists them as version 1.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// DefaultLedgerParameters provides a baseline policy for the staking ledger.
var DefaultLedgerParameters = types.LedgerParameters{
	// One token per block at 18 decimals, split across pools by weight.
	RewardPerBlock: sdkmath.NewIntWithDecimal(1, 18),

	// 5% emergency exit penalty. The hard ceiling is 10% (1000 bps); anything
	// above that is rejected at the admin surface.
	EmergencyWithdrawFeeBps: 500,

	// One week default lock for pools registered without an explicit lock.
	DefaultMinLockSeconds: 7 * 24 * 60 * 60,
}
