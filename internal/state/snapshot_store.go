// ./internal/state/snapshot_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/openyield-labs/svm/internal/types"
)

// SavePoolSnapshots persists one snapshot row per pool for a sweep cycle.
// All rows commit or none do.
func SavePoolSnapshots(snapshots []types.PoolSnapshot) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback()
		}
	}()

	stmt := `
		INSERT INTO pool_snapshots (
			cycle_number, snapshot_timestamp, height, pool_id,
			total_staked, acc_reward_per_share, allocation_weight, active_positions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	for _, snapshot := range snapshots {
		_, err = tx.Exec(
			stmt,
			snapshot.CycleNumber, snapshot.Timestamp, snapshot.Height, uint64(snapshot.PoolID),
			snapshot.TotalStaked.String(), snapshot.AccRewardPerShare.String(),
			snapshot.AllocationWeight, snapshot.ActivePositions,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for pool %d: %w", snapshot.PoolID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pool snapshots: %w", err)
	}

	log.Info().
		Int("count", len(snapshots)).
		Int("cycle_number", snapshots[0].CycleNumber).
		Msg("Pool snapshots saved to database")
	return nil
}

// GetRecentPoolSnapshots retrieves the newest snapshots for one pool.
func GetRecentPoolSnapshots(poolID types.PoolID, limit int) ([]types.PoolSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT snapshot_id, cycle_number, snapshot_timestamp, height, pool_id,
		       total_staked, acc_reward_per_share, allocation_weight, active_positions
		FROM pool_snapshots
		WHERE pool_id = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT $2;`

	rows, err := DB.Query(query, uint64(poolID), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query pool snapshots")
		return nil, fmt.Errorf("failed to query pool snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.PoolSnapshot
	for rows.Next() {
		var snapshot types.PoolSnapshot
		var poolIDRaw uint64
		var totalStakedStr, accStr string

		err := rows.Scan(
			&snapshot.SnapshotID, &snapshot.CycleNumber, &snapshot.Timestamp, &snapshot.Height,
			&poolIDRaw, &totalStakedStr, &accStr, &snapshot.AllocationWeight, &snapshot.ActivePositions,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan snapshot row")
			continue // Skip this row and continue with others
		}

		snapshot.PoolID = types.PoolID(poolIDRaw)

		totalStaked, ok := sdkmath.NewIntFromString(totalStakedStr)
		if !ok {
			log.Error().Str("value", totalStakedStr).Msg("Invalid total_staked value in database")
			continue
		}
		snapshot.TotalStaked = totalStaked

		acc, ok := sdkmath.NewIntFromString(accStr)
		if !ok {
			log.Error().Str("value", accStr).Msg("Invalid acc_reward_per_share value in database")
			continue
		}
		snapshot.AccRewardPerShare = acc

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return snapshots, nil
}
