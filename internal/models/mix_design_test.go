package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixDesignComposition_CostRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		weight, unitCost string
		want             string
	}{
		{"350", "0.15", "52.50"},
		{"1.5", "1.003", "1.50"},
		{"2.5", "0.005", "0.01"},
		{"-2.5", "0.005", "-0.01"},
	}
	for _, tt := range tests {
		c := &MixDesignComposition{WeightPerM3: d(tt.weight), UnitCost: d(tt.unitCost)}
		assert.Equal(t, tt.want, c.Cost().StringFixed(2), "%s x %s", tt.weight, tt.unitCost)
	}
}

func TestMixDesign_CostPerM3(t *testing.T) {
	mix := &MixDesign{Compositions: []MixDesignComposition{
		{MaterialType: MaterialCement, WeightPerM3: d("350"), UnitCost: d("0.15")},
		{MaterialType: MaterialFineAggregate, WeightPerM3: d("800"), UnitCost: d("0.0125")},
		{MaterialType: MaterialWater, WeightPerM3: d("175"), UnitCost: d("0.001")},
	}}

	assert.Equal(t, "62.68", mix.CostPerM3().StringFixed(2))
	assert.True(t, mix.Compositions[1].IsAggregate())
	assert.False(t, mix.Compositions[0].IsAggregate())
}

func TestMixDesignComposition_BeforeCreateRoundsPercentage(t *testing.T) {
	c := &MixDesignComposition{Percentage: d("12.345678")}

	require.NoError(t, c.BeforeCreate(nil))

	assert.Equal(t, "12.3457", c.Percentage.StringFixed(4))
}
