package ledger

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openyield-labs/svm/internal/chain"
	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/types"
)

// scale is the fixed-point precision of the reward-per-share accumulator.
// All settlement math truncates toward zero; rounding dust stays in custody.
var scale = sdkmath.NewInt(1_000_000_000_000) // 1e12

// EventSink receives every domain event the ledger emits. Delivery is
// at-least-once from the consumer's point of view; the ledger publishes each
// event exactly once, after the operation that produced it has fully applied.
type EventSink interface {
	Publish(event types.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event types.Event)

func (f EventSinkFunc) Publish(event types.Event) { f(event) }

type positionKey struct {
	pool    types.PoolID
	account types.Account
}

// Ledger is the accounting core of the staking engine: the pool registry, the
// per-(pool, account) position book, and the global emission policy. Every
// public operation executes as one atomic transition under l.mu; reads for
// reward quoting share an RLock and never race a mutation.
type Ledger struct {
	mu sync.RWMutex

	logger zerolog.Logger
	chain  chain.Provider
	sink   EventSink

	owner types.Account

	pools     []*types.Pool
	positions map[positionKey]*types.Position

	rewardPerBlock        sdkmath.Int
	totalAllocationWeight uint64
	emergencyFeeBps       uint32
	defaultMinLockSeconds int64
	rebalancers           map[types.Account]bool
	paused                bool
}

// Config holds the dependencies and initial policy for a new ledger.
type Config struct {
	Chain      chain.Provider
	Sink       EventSink
	Owner      types.Account
	Parameters types.LedgerParameters
}

// New creates a ledger with an empty pool registry.
func New(cfg Config) (*Ledger, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ledger configuration validation failed: %w", err)
	}

	l := &Ledger{
		logger:                logger.GetForComponent("ledger_core"),
		chain:                 cfg.Chain,
		sink:                  cfg.Sink,
		owner:                 cfg.Owner,
		positions:             make(map[positionKey]*types.Position),
		rewardPerBlock:        cfg.Parameters.RewardPerBlock,
		emergencyFeeBps:       cfg.Parameters.EmergencyWithdrawFeeBps,
		defaultMinLockSeconds: cfg.Parameters.DefaultMinLockSeconds,
		rebalancers:           make(map[types.Account]bool),
	}

	l.logger.Info().
		Str("owner", string(l.owner)).
		Str("rewardPerBlock", l.rewardPerBlock.String()).
		Uint32("emergencyFeeBps", l.emergencyFeeBps).
		Msg("Ledger instance created")

	return l, nil
}

func validateConfig(cfg Config) error {
	if cfg.Chain == nil {
		return fmt.Errorf("chain provider cannot be nil")
	}
	if cfg.Sink == nil {
		return fmt.Errorf("event sink cannot be nil")
	}
	if cfg.Owner.IsZero() {
		return fmt.Errorf("owner account cannot be empty")
	}
	if cfg.Parameters.RewardPerBlock.IsNil() || cfg.Parameters.RewardPerBlock.IsNegative() {
		return fmt.Errorf("reward per block must be non-negative")
	}
	if cfg.Parameters.DefaultMinLockSeconds < 0 {
		return fmt.Errorf("default min lock seconds must be non-negative")
	}
	if cfg.Parameters.EmergencyWithdrawFeeBps > types.MaxEmergencyWithdrawFeeBps {
		return fmt.Errorf("emergency withdraw fee exceeds %d bps", types.MaxEmergencyWithdrawFeeBps)
	}
	return nil
}

// emit stamps and publishes a domain event. Callers must have fully applied
// the state transition the event describes.
func (l *Ledger) emit(event types.Event) {
	event.ID = uuid.NewString()
	if event.Timestamp.IsZero() {
		event.Timestamp = l.chain.CurrentTime()
	}
	if event.Amount.IsNil() {
		event.Amount = sdkmath.ZeroInt()
	}
	if event.Fee.IsNil() {
		event.Fee = sdkmath.ZeroInt()
	}
	l.sink.Publish(event)
}

// position returns the stored position for the key, or a dormant zero-valued
// record without storing it. Callers must hold l.mu (read or write).
func (l *Ledger) position(pool types.PoolID, account types.Account) *types.Position {
	if pos, ok := l.positions[positionKey{pool: pool, account: account}]; ok {
		return pos
	}
	return nil
}

// ensurePosition returns the stored position for the key, creating a dormant
// record on first touch. Callers must hold l.mu for writing.
func (l *Ledger) ensurePosition(pool types.PoolID, account types.Account) *types.Position {
	key := positionKey{pool: pool, account: account}
	pos, ok := l.positions[key]
	if !ok {
		pos = &types.Position{
			PoolID:     pool,
			Account:    account,
			Amount:     sdkmath.ZeroInt(),
			RewardDebt: sdkmath.ZeroInt(),
		}
		l.positions[key] = pos
	}
	return pos
}

// poolByID validates the index and returns the pool. Callers must hold l.mu.
func (l *Ledger) poolByID(id types.PoolID) (*types.Pool, error) {
	if uint64(id) >= uint64(len(l.pools)) {
		return nil, ErrInvalidPool
	}
	return l.pools[id], nil
}

// lockEnd computes the lock expiry for a deposit made now.
func lockEnd(now time.Time, minLockSeconds int64) time.Time {
	return now.Add(time.Duration(minLockSeconds) * time.Second)
}
