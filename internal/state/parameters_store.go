// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/openyield-labs/svm/internal/types"
)

// SaveLedgerParameters saves a new version of ledger parameters.
func SaveLedgerParameters(params types.LedgerParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE ledger_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO ledger_parameters (
            version, config_name, is_active, activated_at, created_at,
            reward_per_block, emergency_withdraw_fee_bps, default_min_lock_seconds
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.RewardPerBlock.String(), params.EmergencyWithdrawFeeBps, params.DefaultMinLockSeconds,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ledger parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ledger parameters: %w", err)
	}

	log.Info().
		Int64("params_id", paramsID).
		Str("config_name", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Ledger parameters saved to database")

	return paramsID, nil
}

// LoadActiveLedgerParameters retrieves the currently active parameter set for
// the given config name.
func LoadActiveLedgerParameters(configName string) (*types.LedgerParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT reward_per_block, emergency_withdraw_fee_bps, default_min_lock_seconds
		FROM ledger_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	var rewardPerBlockStr string
	var params types.LedgerParameters

	row := DB.QueryRow(query, configName)
	err := row.Scan(&rewardPerBlockStr, &params.EmergencyWithdrawFeeBps, &params.DefaultMinLockSeconds)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active ledger parameters found for config %s", configName)
		}
		return nil, fmt.Errorf("failed to load active ledger parameters: %w", err)
	}

	rewardPerBlock, ok := sdkmath.NewIntFromString(rewardPerBlockStr)
	if !ok {
		return nil, fmt.Errorf("invalid reward_per_block value in database: %s", rewardPerBlockStr)
	}
	params.RewardPerBlock = rewardPerBlock

	log.Debug().
		Str("config_name", configName).
		Str("reward_per_block", params.RewardPerBlock.String()).
		Msg("Loaded active ledger parameters")

	return &params, nil
}
