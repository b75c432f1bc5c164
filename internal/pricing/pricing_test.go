package pricing

import (
	"math"
	"testing"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		specs    string
		expected float64
	}{
		{name: "premium", specs: "i7, 32GB RAM, 1TB SSD", expected: PremiumRate},
		{name: "standard", specs: "i5, 16GB RAM, 512GB SSD", expected: StandardRate},
		{name: "empty specs", specs: "", expected: StandardRate},
		{name: "case sensitive marker", specs: "i9, 32gb RAM", expected: StandardRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rate(tt.specs))
			assert.Equal(t, tt.expected == PremiumRate, IsPremium(tt.specs))
		})
	}
}

func TestCost(t *testing.T) {
	assert.Equal(t, PremiumRate*2, Cost("i7, 32GB RAM, 1TB SSD", 2))
	assert.Equal(t, StandardRate*1.5, Cost("i5, 8GB RAM", 1.5))
	assert.Equal(t, StandardRate*0.5, Cost("i5, 8GB RAM", 0.5))

	for _, hours := range []float64{0.5, 1, 2.5, 4, 12} {
		assert.Equal(t, Rate("i3")*hours, Cost("i3", hours))
		assert.Equal(t, Rate("32GB")*hours, Cost("32GB", hours))
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name    string
		hours   float64
		wantErr bool
	}{
		{name: "half hour", hours: 0.5},
		{name: "whole hours", hours: 3},
		{name: "fractional half", hours: 2.5},
		{name: "maximum", hours: MaxDuration},
		{name: "zero", hours: 0, wantErr: true},
		{name: "negative", hours: -1, wantErr: true},
		{name: "quarter hour", hours: 1.25, wantErr: true},
		{name: "over maximum", hours: MaxDuration + Increment, wantErr: true},
		{name: "NaN", hours: math.NaN(), wantErr: true},
		{name: "infinity", hours: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.hours)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidDuration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
