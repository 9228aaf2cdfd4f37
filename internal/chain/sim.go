package chain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInsufficientBalance = errors.New("account balance is insufficient")
	ErrInsufficientCustody = errors.New("custody balance is insufficient")
	ErrInvalidTransfer     = errors.New("transfer amount is invalid")
)

// Simulator is an in-memory Provider with a manually driven clock and height.
// It backs the ledger in tests and in local development mode, where no live
// chain connection is configured. All methods are safe for concurrent use.
type Simulator struct {
	mu      sync.Mutex
	height  uint64
	now     time.Time
	custody map[types.Asset]sdkmath.Int
	banks   map[types.Asset]map[types.Account]sdkmath.Int
	logger  zerolog.Logger
}

// NewSimulator starts the simulated chain at the given height and time.
func NewSimulator(height uint64, now time.Time) *Simulator {
	return &Simulator{
		height:  height,
		now:     now,
		custody: make(map[types.Asset]sdkmath.Int),
		banks:   make(map[types.Asset]map[types.Account]sdkmath.Int),
		logger:  logger.GetForComponent("chain_simulator"),
	}
}

// AdvanceHeight moves the simulated chain forward by n blocks.
func (s *Simulator) AdvanceHeight(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height += n
}

// AdvanceTime moves the simulated wall clock forward.
func (s *Simulator) AdvanceTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// Fund credits an account with amount of asset, minting it out of thin air.
func (s *Simulator) Fund(asset types.Asset, account types.Account, amount sdkmath.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bank := s.bank(asset)
	bank[account] = s.balance(bank, account).Add(amount)
}

// FundCustody credits ledger custody directly, used to seed reward budgets.
func (s *Simulator) FundCustody(asset types.Asset, amount sdkmath.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custody[asset] = s.custodyBalance(asset).Add(amount)
}

// BalanceOf reports an account's balance of asset.
func (s *Simulator) BalanceOf(asset types.Asset, account types.Account) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance(s.bank(asset), account)
}

func (s *Simulator) CurrentHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

func (s *Simulator) CurrentTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Simulator) TransferIn(asset types.Asset, from types.Account, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidTransfer, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bank := s.bank(asset)
	have := s.balance(bank, from)
	if have.LT(amount) {
		return fmt.Errorf("%w: account %s has %s of %s, needs %s",
			ErrInsufficientBalance, from, have, asset, amount)
	}

	bank[from] = have.Sub(amount)
	s.custody[asset] = s.custodyBalance(asset).Add(amount)

	s.logger.Debug().
		Str("asset", string(asset)).
		Str("from", string(from)).
		Str("amount", amount.String()).
		Msg("Transferred into custody")
	return nil
}

func (s *Simulator) TransferOut(asset types.Asset, to types.Account, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidTransfer, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	have := s.custodyBalance(asset)
	if have.LT(amount) {
		return fmt.Errorf("%w: custody holds %s of %s, needs %s",
			ErrInsufficientCustody, have, asset, amount)
	}

	s.custody[asset] = have.Sub(amount)
	bank := s.bank(asset)
	bank[to] = s.balance(bank, to).Add(amount)

	s.logger.Debug().
		Str("asset", string(asset)).
		Str("to", string(to)).
		Str("amount", amount.String()).
		Msg("Released from custody")
	return nil
}

func (s *Simulator) CustodyBalance(asset types.Asset) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custodyBalance(asset)
}

// bank returns the per-account balance map for asset, creating it on demand.
// Callers must hold s.mu.
func (s *Simulator) bank(asset types.Asset) map[types.Account]sdkmath.Int {
	bank, ok := s.banks[asset]
	if !ok {
		bank = make(map[types.Account]sdkmath.Int)
		s.banks[asset] = bank
	}
	return bank
}

func (s *Simulator) balance(bank map[types.Account]sdkmath.Int, account types.Account) sdkmath.Int {
	if b, ok := bank[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (s *Simulator) custodyBalance(asset types.Asset) sdkmath.Int {
	if b, ok := s.custody[asset]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}
