/*

This file contains the domain events the ledger emits for audit and indexing.
Downstream consumers should treat delivery as at-least-once.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

type EventType string

const (
	EventPoolAdded          EventType = "pool_added"
	EventDeposit            EventType = "deposit"
	EventWithdraw           EventType = "withdraw"
	EventEmergencyWithdraw  EventType = "emergency_withdraw"
	EventRewardClaimed      EventType = "reward_claimed"
	EventRebalanceRequested EventType = "rebalance_requested"
	EventPolicyUpdated      EventType = "policy_updated"
)

// Event is a single ledger occurrence. Amount carries the operation's primary
// quantity: principal for deposit/withdraw, post-fee payout for emergency
// withdraw, paid reward for reward_claimed, target amount for
// rebalance_requested. Fee is only set on emergency withdrawals.
type Event struct {
	ID        string      `json:"id"` // uuid
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Height    uint64      `json:"height"`
	PoolID    PoolID      `json:"pool_id"`
	Account   Account     `json:"account,omitempty"`
	Amount    sdkmath.Int `json:"amount"`
	Fee       sdkmath.Int `json:"fee"`

	// Attributes carries event-specific details, e.g. the changed policy field
	// for policy_updated or the asset pair for pool_added.
	Attributes map[string]string `json:"attributes,omitempty"`
}
