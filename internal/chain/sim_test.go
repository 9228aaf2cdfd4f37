package chain

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openyield-labs/svm/internal/types"
)

const (
	asset   = types.Asset("0xASSET")
	account = types.Account("account")
)

func TestSimulatorClockAndHeight(t *testing.T) {
	start := time.Unix(1_700_000_000, 0).UTC()
	sim := NewSimulator(42, start)

	require.Equal(t, uint64(42), sim.CurrentHeight())
	require.Equal(t, start, sim.CurrentTime())

	sim.AdvanceHeight(8)
	sim.AdvanceTime(90 * time.Second)

	require.Equal(t, uint64(50), sim.CurrentHeight())
	require.Equal(t, start.Add(90*time.Second), sim.CurrentTime())
}

func TestSimulatorTransferRoundTrip(t *testing.T) {
	sim := NewSimulator(1, time.Unix(0, 0).UTC())
	sim.Fund(asset, account, sdkmath.NewInt(1000))

	require.NoError(t, sim.TransferIn(asset, account, sdkmath.NewInt(600)))
	require.True(t, sim.BalanceOf(asset, account).Equal(sdkmath.NewInt(400)))
	require.True(t, sim.CustodyBalance(asset).Equal(sdkmath.NewInt(600)))

	require.NoError(t, sim.TransferOut(asset, account, sdkmath.NewInt(600)))
	require.True(t, sim.BalanceOf(asset, account).Equal(sdkmath.NewInt(1000)))
	require.True(t, sim.CustodyBalance(asset).IsZero())
}

func TestSimulatorRejectsOverdraft(t *testing.T) {
	sim := NewSimulator(1, time.Unix(0, 0).UTC())
	sim.Fund(asset, account, sdkmath.NewInt(100))

	err := sim.TransferIn(asset, account, sdkmath.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.True(t, sim.BalanceOf(asset, account).Equal(sdkmath.NewInt(100)))

	err = sim.TransferOut(asset, account, sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientCustody)
}

func TestSimulatorRejectsNonPositiveTransfers(t *testing.T) {
	sim := NewSimulator(1, time.Unix(0, 0).UTC())

	require.ErrorIs(t, sim.TransferIn(asset, account, sdkmath.ZeroInt()), ErrInvalidTransfer)
	require.ErrorIs(t, sim.TransferOut(asset, account, sdkmath.NewInt(-3)), ErrInvalidTransfer)
	require.ErrorIs(t, sim.TransferIn(asset, account, sdkmath.Int{}), ErrInvalidTransfer)
}

func TestSimulatorCustodySeeding(t *testing.T) {
	sim := NewSimulator(1, time.Unix(0, 0).UTC())
	sim.FundCustody(asset, sdkmath.NewInt(5000))

	require.True(t, sim.CustodyBalance(asset).Equal(sdkmath.NewInt(5000)))
	require.NoError(t, sim.TransferOut(asset, account, sdkmath.NewInt(2000)))
	require.True(t, sim.CustodyBalance(asset).Equal(sdkmath.NewInt(3000)))
	require.True(t, sim.BalanceOf(asset, account).Equal(sdkmath.NewInt(2000)))
}
