package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSDKIntToFloat64(t *testing.T) {
	v, err := SDKIntToFloat64(sdkmath.NewIntWithDecimal(15, 17), 18)
	require.NoError(t, err)
	require.InDelta(t, 1.5, v, 1e-9)

	v, err = SDKIntToFloat64(sdkmath.NewInt(12345), 0)
	require.NoError(t, err)
	require.InDelta(t, 12345.0, v, 1e-9)
}

func TestSDKIntToFloat64Rejections(t *testing.T) {
	_, err := SDKIntToFloat64(sdkmath.NewInt(1), -1)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.NewInt(1), 19)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.Int{}, 6)
	require.ErrorIs(t, err, ErrAmountNil)

	_, err = SDKIntToFloat64(sdkmath.NewInt(-5), 6)
	require.ErrorIs(t, err, ErrAmountNegative)
}

func TestBpsToPercent(t *testing.T) {
	require.InDelta(t, 2.5, BpsToPercent(250), 1e-9)
	require.InDelta(t, 0.0, BpsToPercent(0), 1e-9)
	require.InDelta(t, 10.0, BpsToPercent(1000), 1e-9)
}
