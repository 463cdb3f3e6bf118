package aqi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name      string
		pollutant Pollutant
		value     float64
		expected  Category
	}{
		{name: "zero is good", pollutant: PM25, value: 0, expected: Good},
		{name: "bound is inclusive", pollutant: PM25, value: 12.0, expected: Good},
		{name: "just above bound", pollutant: PM25, value: 12.01, expected: Moderate},
		{name: "sensitive band", pollutant: PM25, value: 55.4, expected: UnhealthySensitive},
		{name: "unhealthy band", pollutant: PM10, value: 300, expected: Unhealthy},
		{name: "very unhealthy band", pollutant: NO2, value: 1249, expected: VeryUnhealthy},
		{name: "above last finite bound", pollutant: CO, value: 30.41, expected: Hazardous},
		{name: "large value", pollutant: O3, value: 1e9, expected: Hazardous},
		{name: "NaN is unavailable", pollutant: SO2, value: math.NaN(), expected: Unavailable},
		{name: "negative is unavailable", pollutant: SO2, value: -0.5, expected: Unavailable},
		{name: "positive infinity is unavailable", pollutant: SO2, value: math.Inf(1), expected: Unavailable},
		{name: "negative infinity is unavailable", pollutant: SO2, value: math.Inf(-1), expected: Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Categorize(tt.pollutant, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCategorize_UnknownPollutant(t *testing.T) {
	got, err := Categorize(Pollutant("CH4"), 1)
	assert.ErrorIs(t, err, ErrUnknownPollutant)
	assert.Equal(t, Unavailable, got)
}

func TestCategorize_EveryBoundMapsToItsOwnCategory(t *testing.T) {
	for _, p := range Pollutants() {
		tbl, err := Table(p)
		require.NoError(t, err)
		for _, th := range tbl {
			if math.IsInf(th.UpperBound, 1) {
				continue
			}
			got, err := Categorize(p, th.UpperBound)
			require.NoError(t, err)
			assert.Equal(t, th.Category, got, "%s at %v", p, th.UpperBound)
		}
	}
}

func TestCategorize_SmallestBoundNotBelowValue(t *testing.T) {
	for _, p := range Pollutants() {
		tbl, err := Table(p)
		require.NoError(t, err)
		top := tbl[len(tbl)-2].UpperBound
		for v := 0.0; v < top; v += top / 97 {
			got, err := Categorize(p, v)
			require.NoError(t, err)

			var want Category
			for _, th := range tbl {
				if th.UpperBound >= v {
					want = th.Category
					break
				}
			}
			assert.Equal(t, want, got, "%s at %v", p, v)
		}
	}
}

func TestTable_LastBoundIsUnbounded(t *testing.T) {
	for _, p := range Pollutants() {
		tbl, err := Table(p)
		require.NoError(t, err)
		require.Len(t, tbl, 6)
		assert.True(t, math.IsInf(tbl[len(tbl)-1].UpperBound, 1))
		for i := 1; i < len(tbl); i++ {
			assert.Less(t, tbl[i-1].UpperBound, tbl[i].UpperBound)
		}
	}
}

func TestTable_ReturnsCopy(t *testing.T) {
	tbl, err := Table(PM25)
	require.NoError(t, err)
	tbl[0].UpperBound = 999

	got, err := Categorize(PM25, 100)
	require.NoError(t, err)
	assert.Equal(t, Unhealthy, got)
}

func TestParsePollutant(t *testing.T) {
	p, err := ParsePollutant("PM2.5")
	require.NoError(t, err)
	assert.Equal(t, PM25, p)

	_, err = ParsePollutant("pm25")
	assert.ErrorIs(t, err, ErrUnknownPollutant)
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "mg/m³", Unit(CO))
	assert.Equal(t, "µg/m³", Unit(PM10))
}

func TestCategories_Order(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 7)
	assert.Equal(t, Good, cats[0])
	assert.Equal(t, Unavailable, cats[len(cats)-1])
}
