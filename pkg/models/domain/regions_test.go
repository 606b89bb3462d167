package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRegion(t *testing.T) {
	info, err := LookupRegion("east")
	require.NoError(t, err)
	assert.Equal(t, "NW2_EPG0_SWO_R31_BCF", info.SeriesID)
	assert.Len(t, info.States, 18)
	assert.Equal(t, []string{"SMIDA", "SNY", "SNE", "SCAR", "SFL"}, info.DuoAreas())

	_, err = LookupRegion("atlantis")
	assert.True(t, errors.Is(err, ErrUnknownRegion))
}

func TestRegionsSorted(t *testing.T) {
	all := Regions()
	require.Len(t, all, 8)
	for i := 1; i < len(all); i++ {
		assert.Less(t, string(all[i-1].Region), string(all[i].Region))
	}
}

func TestParseFuelType(t *testing.T) {
	fuel, err := ParseFuelType(" ng ")
	require.NoError(t, err)
	assert.Equal(t, FuelNaturalGas, fuel)

	_, err = ParseFuelType("COAL")
	assert.True(t, errors.Is(err, ErrUnknownFuel))
}

func TestParseConsumptionCategory(t *testing.T) {
	tests := []struct {
		in   string
		want ConsumptionCategory
		err  error
	}{
		{in: "residential", want: ConsumptionResidential},
		{in: "VEU", want: ConsumptionElectricity},
		{in: "farm", err: ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConsumptionCategory(tt.in)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimezoneLocation(t *testing.T) {
	assert.Equal(t, "America/New_York", TimezoneEastern.Location())
	assert.Equal(t, "America/Los_Angeles", TimezonePacific.Location())
}
