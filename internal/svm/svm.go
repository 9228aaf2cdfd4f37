package svm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openyield-labs/svm/internal/chain"
	"github.com/openyield-labs/svm/internal/ledger"
	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/state"
	"github.com/openyield-labs/svm/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_CONFIG_NAME    = "default_svm_policy"
	DEFAULT_CONFIG_VERSION = 1
)

// SVM is the Staking Vault Manager service: it owns the ledger, keeps every
// pool's accumulator fresh via a periodic sweep, and persists snapshots so
// pool state stays queryable over time.
type SVM struct {
	// Core dependencies
	logger zerolog.Logger
	ledger *ledger.Ledger
	chain  chain.Provider

	// Configuration
	configName    string
	configVersion int

	// Runtime state
	cycleCount int
}

// Config holds the configuration for creating a new SVM instance
type Config struct {
	Ledger        *ledger.Ledger
	Chain         chain.Provider
	ConfigName    string
	ConfigVersion int
}

// NewSVM creates a new SVM instance with dependency injection
func NewSVM(cfg Config) (*SVM, error) {
	if err := validateSVMConfig(cfg); err != nil {
		return nil, fmt.Errorf("SVM configuration validation failed: %w", err)
	}

	s := &SVM{
		logger:        logger.GetForComponent("svm_core"),
		ledger:        cfg.Ledger,
		chain:         cfg.Chain,
		configName:    cfg.ConfigName,
		configVersion: cfg.ConfigVersion,
		cycleCount:    0,
	}

	// Resume the persistent cycle counter so snapshot history stays
	// contiguous across restarts.
	if current, err := state.GetCurrentCycleNumber(); err == nil {
		s.cycleCount = current
	} else {
		s.logger.Warn().Err(err).Msg("Could not load cycle counter, starting from 0")
	}

	s.logger.Info().
		Str("configName", s.configName).
		Int("configVersion", s.configVersion).
		Int("cycle", s.cycleCount).
		Msg("SVM instance created")

	return s, nil
}

// validateSVMConfig validates the SVM configuration
func validateSVMConfig(cfg Config) error {
	if cfg.Ledger == nil {
		return fmt.Errorf("ledger cannot be nil")
	}
	if cfg.Chain == nil {
		return fmt.Errorf("chain provider cannot be nil")
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.ConfigVersion <= 0 {
		return fmt.Errorf("config version must be positive")
	}
	return nil
}

// RunLoop starts the main sweep loop with the specified interval
func (s *SVM) RunLoop(ctx context.Context, interval time.Duration) {
	s.logger.Info().
		Dur("interval", interval).
		Msg("Starting SVM sweep loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	s.RunCycle()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("SVM sweep loop stopped due to context cancellation")
			return
		case <-ticker.C:
			s.RunCycle()
		}
	}
}

// RunCycle refreshes every pool's accumulator at the current chain height and
// persists a snapshot per pool. Accrual is pulled on demand by every ledger
// operation anyway; the sweep keeps accumulators fresh during quiet periods
// and produces the time series behind the snapshot API.
func (s *SVM) RunCycle() {
	height := s.chain.CurrentHeight()
	now := s.chain.CurrentTime()

	newCycle, err := state.IncrementCycleNumber()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to increment cycle counter, using in-memory count")
		s.cycleCount++
		newCycle = s.cycleCount
	} else {
		s.cycleCount = newCycle
	}

	s.logger.Info().Int("cycle", newCycle).Uint64("height", height).Msg("Initiating sweep cycle")

	s.ledger.AccrueAll()

	pools := s.ledger.Pools()
	snapshots := make([]types.PoolSnapshot, 0, len(pools))
	for _, pool := range pools {
		snapshots = append(snapshots, types.PoolSnapshot{
			CycleNumber:       newCycle,
			Timestamp:         now,
			Height:            height,
			PoolID:            pool.ID,
			TotalStaked:       pool.TotalStaked,
			AccRewardPerShare: pool.AccRewardPerShare,
			AllocationWeight:  pool.AllocationWeight,
			ActivePositions:   s.ledger.ActivePositions(pool.ID),
		})
	}

	if err := state.SavePoolSnapshots(snapshots); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist pool snapshots")
	}

	s.logger.Info().
		Int("cycle", newCycle).
		Int("pools", len(pools)).
		Msg("Sweep cycle completed")
}
