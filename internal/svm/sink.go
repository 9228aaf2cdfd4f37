package svm

import (
	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/state"
	"github.com/openyield-labs/svm/internal/types"
)

var sinkLogger = logger.GetForComponent("event_sink")

// StoreSink persists every ledger event to the database audit log and mirrors
// it to the structured log. A failed insert is logged and the event dropped
// from the store; the uuid key means a future redelivery cannot duplicate it.
type StoreSink struct{}

func (StoreSink) Publish(event types.Event) {
	if err := state.SaveEvent(event); err != nil {
		sinkLogger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("Failed to persist ledger event")
	}

	sinkLogger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Uint64("pool", uint64(event.PoolID)).
		Str("account", string(event.Account)).
		Str("amount", event.Amount.String()).
		Msg("Ledger event")
}
