/*

This file contains the snapshot types persisted by the sweep loop, giving an
queryable history of pool state over time.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// PoolSnapshot captures one pool's accrual state at the end of a sweep cycle.
type PoolSnapshot struct {
	SnapshotID        int64       `json:"snapshot_id,omitempty"` // Auto-incremented by DB
	CycleNumber       int         `json:"cycle_number"`
	Timestamp         time.Time   `json:"timestamp"`
	Height            uint64      `json:"height"`
	PoolID            PoolID      `json:"pool_id"`
	TotalStaked       sdkmath.Int `json:"total_staked"`
	AccRewardPerShare sdkmath.Int `json:"acc_reward_per_share"`
	AllocationWeight  uint64      `json:"allocation_weight"`
	ActivePositions   int         `json:"active_positions"`
}
