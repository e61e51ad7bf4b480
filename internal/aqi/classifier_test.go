package aqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		value int
		level Level
	}{
		{0, LevelGood},
		{50, LevelGood},
		{51, LevelModerate},
		{100, LevelModerate},
		{101, LevelUnhealthyForSensitiveGroups},
		{150, LevelUnhealthyForSensitiveGroups},
		{151, LevelUnhealthy},
		{200, LevelUnhealthy},
		{201, LevelVeryUnhealthy},
		{300, LevelVeryUnhealthy},
		{301, LevelHazardous},
		{999, LevelHazardous},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, Classify(tc.value).Level, "aqi %d", tc.value)
	}
}

func TestClassifyLabelsAndColors(t *testing.T) {
	got := Classify(150)
	assert.Equal(t, "Unhealthy for Sensitive Groups", got.Label)
	assert.Equal(t, "#ffb74d", got.Color)

	assert.Equal(t, "#b71c1c", Classify(301).Color)
	assert.Equal(t, "#a8e05f", Classify(12).Color)
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[Level]int{}
	for i, b := range Scale() {
		rank[b.Category.Level] = i
	}
	prev := rank[Classify(0).Level]
	for v := 1; v <= 500; v++ {
		cur := rank[Classify(v).Level]
		assert.GreaterOrEqual(t, cur, prev, "severity dropped at %d", v)
		prev = cur
	}
}

func TestScaleOrder(t *testing.T) {
	scale := Scale()
	assert.Len(t, scale, 6)
	assert.Equal(t, "0 - 50", scale[0].Range())
	assert.Equal(t, "Green", scale[0].ColorName)
	assert.Equal(t, "301+", scale[5].Range())
	assert.Equal(t, LevelHazardous, scale[5].Category.Level)
}
