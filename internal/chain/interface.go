package chain

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/openyield-labs/svm/internal/types"
)

// Provider defines the interface the ledger uses to observe chain time and to
// move assets in and out of custody. This abstracts away the specific
// environment (live chain connection, simulation, etc.); the ledger itself
// never implements balances, custody, or consensus.
//
// Each logical transfer is invoked at most once per ledger operation, and the
// ledger records each leg's bookkeeping only after the corresponding call
// succeeds, so implementations should make each call atomic on their side.
type Provider interface {
	// CurrentHeight returns the current block height. Must be monotonically
	// non-decreasing across calls.
	CurrentHeight() uint64

	// CurrentTime returns the current wall-clock time. Must be monotonically
	// non-decreasing across calls.
	CurrentTime() time.Time

	// TransferIn moves amount of asset from the account into ledger custody.
	TransferIn(asset types.Asset, from types.Account, amount sdkmath.Int) error

	// TransferOut releases amount of asset from ledger custody to the account.
	TransferOut(asset types.Asset, to types.Account, amount sdkmath.Int) error

	// CustodyBalance reports how much of asset the ledger currently holds.
	// Reward payouts are capped at this balance.
	CustodyBalance(asset types.Asset) sdkmath.Int
}
