// ./internal/state/event_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/openyield-labs/svm/internal/types"
)

// SaveEvent appends a ledger event to the audit log. The uuid primary key
// makes redelivery of the same event a no-op, giving downstream consumers
// at-least-once semantics without duplicate rows.
func SaveEvent(event types.Event) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	var attributesJSON []byte
	if len(event.Attributes) > 0 {
		var err error
		attributesJSON, err = json.Marshal(event.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal event attributes: %w", err)
		}
	}

	stmt := `
		INSERT INTO ledger_events (
			event_id, event_type, event_timestamp, height, pool_id, account, amount, fee, attributes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING;`

	_, err := DB.Exec(
		stmt,
		event.ID, string(event.Type), event.Timestamp, event.Height,
		uint64(event.PoolID), nullableAccount(event.Account),
		event.Amount.String(), event.Fee.String(), attributesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger event: %w", err)
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Uint64("pool_id", uint64(event.PoolID)).
		Msg("Ledger event saved")
	return nil
}

// GetRecentEvents retrieves the newest events, optionally filtered by pool.
// Pass a negative poolID to skip the filter.
func GetRecentEvents(poolID int64, limit int) ([]types.Event, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 500 {
		limit = 50 // Default limit
	}

	var rows *sql.Rows
	var err error
	if poolID >= 0 {
		query := `
			SELECT event_id, event_type, event_timestamp, height, pool_id, account, amount, fee, attributes
			FROM ledger_events
			WHERE pool_id = $1
			ORDER BY event_timestamp DESC
			LIMIT $2;`
		rows, err = DB.Query(query, poolID, limit)
	} else {
		query := `
			SELECT event_id, event_type, event_timestamp, height, pool_id, account, amount, fee, attributes
			FROM ledger_events
			ORDER BY event_timestamp DESC
			LIMIT $1;`
		rows, err = DB.Query(query, limit)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent events")
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan event row")
			continue // Skip this row and continue with others
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return events, nil
}

func scanEvent(rows *sql.Rows) (types.Event, error) {
	var event types.Event
	var eventType string
	var poolID uint64
	var account sql.NullString
	var amountStr, feeStr string
	var attributesJSON []byte

	err := rows.Scan(
		&event.ID, &eventType, &event.Timestamp, &event.Height,
		&poolID, &account, &amountStr, &feeStr, &attributesJSON,
	)
	if err != nil {
		return types.Event{}, err
	}

	event.Type = types.EventType(eventType)
	event.PoolID = types.PoolID(poolID)
	if account.Valid {
		event.Account = types.Account(account.String)
	}

	amount, ok := sdkmath.NewIntFromString(amountStr)
	if !ok {
		return types.Event{}, fmt.Errorf("invalid amount value in database: %s", amountStr)
	}
	event.Amount = amount

	fee, ok := sdkmath.NewIntFromString(feeStr)
	if !ok {
		return types.Event{}, fmt.Errorf("invalid fee value in database: %s", feeStr)
	}
	event.Fee = fee

	if len(attributesJSON) > 0 {
		if err := json.Unmarshal(attributesJSON, &event.Attributes); err != nil {
			return types.Event{}, fmt.Errorf("failed to unmarshal event attributes: %w", err)
		}
	}

	return event, nil
}

func nullableAccount(account types.Account) sql.NullString {
	if account.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: string(account), Valid: true}
}
