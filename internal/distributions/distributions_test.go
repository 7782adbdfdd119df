package distributions

import (
	"sync"
	"testing"

	"lcgwalk/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverseNormalCDF_KnownQuantiles(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0.5, 0},
		{0.975, 1.959964},
		{0.995, 2.575829},
		{0.025, -1.959964},
	}

	for _, tt := range tests {
		got, err := InverseNormalCDF(tt.p)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-5, "p=%v", tt.p)
	}
}

func TestInverseNormalCDF_RejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5} {
		_, err := InverseNormalCDF(p)
		assert.ErrorIs(t, err, core.ErrInvalidProbability, "p=%v", p)
	}
}

func TestInverseChiSquareCDF_KnownQuantiles(t *testing.T) {
	tests := []struct {
		p    float64
		df   int
		want float64
	}{
		{0.025, 99, 73.361},
		{0.975, 99, 128.422},
		{0.025, 29, 16.047},
		{0.975, 29, 45.722},
		{0.95, 1, 3.841},
	}

	for _, tt := range tests {
		got, err := InverseChiSquareCDF(tt.p, tt.df)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-3, "p=%v df=%d", tt.p, tt.df)
	}
}

func TestInverseChiSquareCDF_Clamp(t *testing.T) {
	clamped, err := InverseChiSquareCDF(0.9999999999, 5)
	require.NoError(t, err)
	atClamp, err := InverseChiSquareCDF(ChiSquareClamp, 5)
	require.NoError(t, err)
	assert.Equal(t, atClamp, clamped)
}

func TestInverseChiSquareCDF_Errors(t *testing.T) {
	_, err := InverseChiSquareCDF(0.5, 0)
	assert.ErrorIs(t, err, core.ErrInvalidDegreesOfFreedom)

	_, err = InverseChiSquareCDF(0.5, -3)
	assert.ErrorIs(t, err, core.ErrInvalidDegreesOfFreedom)

	for _, p := range []float64{1, -0.01, 2} {
		_, err = InverseChiSquareCDF(p, 10)
		assert.ErrorIs(t, err, core.ErrInvalidProbability, "p=%v", p)
	}
}

func TestDistributions_ConcurrentCallers(t *testing.T) {
	want, err := InverseChiSquareCDF(0.975, 99)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan float64, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := InverseChiSquareCDF(0.975, 99)
			if got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent call returned %v, want %v", got, want)
	}
}
