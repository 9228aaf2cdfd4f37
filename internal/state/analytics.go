package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/openyield-labs/svm/internal/types"
)

// PoolActivity represents aggregated flow statistics for a single pool,
// derived from the persisted event log.
type PoolActivity struct {
	PoolID             types.PoolID `json:"pool_id"`
	DepositCount       int          `json:"deposit_count"`
	WithdrawCount      int          `json:"withdraw_count"`
	EmergencyExitCount int          `json:"emergency_exit_count"`
	TotalDeposited     string       `json:"total_deposited"`
	TotalWithdrawn     string       `json:"total_withdrawn"`
	TotalRewardsPaid   string       `json:"total_rewards_paid"`
	TotalFeesRetained  string       `json:"total_fees_retained"`
}

// GetPoolActivity aggregates the event log for one pool.
func GetPoolActivity(poolID types.PoolID) (*PoolActivity, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT event_type,
		       COUNT(*),
		       COALESCE(SUM(amount), 0)::TEXT,
		       COALESCE(SUM(fee), 0)::TEXT
		FROM ledger_events
		WHERE pool_id = $1
		GROUP BY event_type;`

	rows, err := DB.Query(query, uint64(poolID))
	if err != nil {
		log.Error().Err(err).Msg("Failed to query pool activity")
		return nil, fmt.Errorf("failed to query pool activity: %w", err)
	}
	defer rows.Close()

	activity := &PoolActivity{
		PoolID:            poolID,
		TotalDeposited:    "0",
		TotalWithdrawn:    "0",
		TotalRewardsPaid:  "0",
		TotalFeesRetained: "0",
	}

	for rows.Next() {
		var eventType string
		var count int
		var amountSum, feeSum string

		if err := rows.Scan(&eventType, &count, &amountSum, &feeSum); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}

		switch types.EventType(eventType) {
		case types.EventDeposit:
			activity.DepositCount = count
			activity.TotalDeposited = amountSum
		case types.EventWithdraw:
			activity.WithdrawCount = count
			activity.TotalWithdrawn = amountSum
		case types.EventEmergencyWithdraw:
			activity.EmergencyExitCount = count
			activity.TotalFeesRetained = feeSum
		case types.EventRewardClaimed:
			activity.TotalRewardsPaid = amountSum
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return activity, nil
}

// TotalValueStaked sums the latest snapshot's total staked across all pools.
// Returns zero when no snapshots exist yet.
func TotalValueStaked() (sdkmath.Int, error) {
	if DB == nil {
		return sdkmath.Int{}, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT COALESCE(SUM(total_staked), 0)::TEXT FROM (
			SELECT DISTINCT ON (pool_id) total_staked
			FROM pool_snapshots
			ORDER BY pool_id, snapshot_timestamp DESC
		) latest;`

	var totalStr string
	if err := DB.QueryRow(query).Scan(&totalStr); err != nil {
		return sdkmath.Int{}, fmt.Errorf("failed to query total value staked: %w", err)
	}

	total, ok := sdkmath.NewIntFromString(totalStr)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid total_staked aggregate: %s", totalStr)
	}
	return total, nil
}
