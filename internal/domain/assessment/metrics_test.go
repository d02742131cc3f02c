package assessment

import (
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestComputeBMI(t *testing.T) {
	assert.InDelta(t, 22.86, ComputeBMI(70, 1.75), 0.01)

	for _, w := range []float64{70, 0, -5, math.NaN(), math.Inf(1)} {
		got := ComputeBMI(w, 0)
		assert.Zero(t, got)
		assert.False(t, math.IsNaN(got))
	}

	assert.Zero(t, ComputeBMI(70, -1.8))
	assert.Zero(t, ComputeBMI(math.NaN(), 1.8))
	assert.Zero(t, ComputeBMI(70, math.Inf(1)))
}

func TestComputeCormicIndex(t *testing.T) {
	assert.InDelta(t, 52.78, ComputeCormicIndex(0.95, 1.80), 0.01)
	assert.Zero(t, ComputeCormicIndex(0.95, 0))
	assert.Zero(t, ComputeCormicIndex(-1, 1.80))
	assert.Zero(t, ComputeCormicIndex(math.Inf(-1), 1.80))
}

func TestClassifyBMI(t *testing.T) {
	c := DefaultConstraints()

	tests := []struct {
		value float64
		want  string
	}{
		{18.49, "Insufficient"},
		{18.5, "Normal"},
		{24.99, "Normal"},
		{25.0, "Overweight"},
		{41, "Overweight"},
		{0, Sentinel},
		{-3, Sentinel},
		{math.NaN(), Sentinel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ClassifyBMI(tt.value).Label, "bmi %v", tt.value)
	}
}

func TestClassifyCormicIndex(t *testing.T) {
	c := DefaultConstraints()

	tests := []struct {
		value  float64
		label  string
		detail string
	}{
		{49.99, "Brachycormic", "short trunk"},
		{50, "Mesocormic", "average trunk"},
		{55, "Mesocormic", "average trunk"},
		{55.01, "Macroskelic", "long trunk"},
		{0, Sentinel, ""},
	}
	for _, tt := range tests {
		got := c.ClassifyCormicIndex(tt.value)
		assert.Equal(t, tt.label, got.Label, "cormic %v", tt.value)
		assert.Equal(t, tt.detail, got.Detail, "cormic %v", tt.value)
	}
}

func TestMetricsOfRawInput(t *testing.T) {
	c := DefaultConstraints()

	m := c.MetricsOf(MeasurementInput{WeightKg: "70", HeightM: "1,80", SittingHeightM: "0.95"})
	assert.InDelta(t, 21.6, m.BMI, 0.01)
	assert.Equal(t, ClassNormal, m.BMIClass.Code)
	assert.InDelta(t, 52.8, m.CormicIndex, 0.05)
	assert.Equal(t, ClassMesocormic, m.CormicClass.Code)
	assert.Equal(t, "BMI 21.60 (Normal). Cormic index 52.78 (Mesocormic, average trunk).", m.Summary())

	half := c.MetricsOf(MeasurementInput{WeightKg: "70", HeightM: "abc"})
	assert.True(t, half.BMIClass.IsSentinel())
	assert.True(t, half.CormicClass.IsSentinel())
	assert.Empty(t, half.Summary())
}

func TestConstraintsWithDoesNotMutateReceiver(t *testing.T) {
	base := DefaultConstraints()
	custom := base.With(func(c *Constraints) {
		c.Height = Range{Min: 1, Max: 3}
		c.Trials[TrialSpeed] = TrialLimit{Max: 20, Unit: "s", Label: "Speed"}
	})

	assert.Equal(t, 2.5, base.Height.Max)
	assert.Equal(t, 15.0, base.Trials[TrialSpeed].Max)
	assert.Equal(t, 3.0, custom.Height.Max)
	assert.Equal(t, 20.0, custom.Trials[TrialSpeed].Max)
}
