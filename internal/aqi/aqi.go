package aqi

import (
	"errors"
	"fmt"
	"math"
)

// Pollutant identifies one of the measured pollutant columns
type Pollutant string

const (
	PM25 Pollutant = "PM2.5"
	PM10 Pollutant = "PM10"
	SO2  Pollutant = "SO2"
	NO2  Pollutant = "NO2"
	CO   Pollutant = "CO"
	O3   Pollutant = "O3"
)

// ErrUnknownPollutant is returned for identifiers outside the fixed pollutant set
var ErrUnknownPollutant = errors.New("aqi: unknown pollutant")

var pollutants = []Pollutant{PM25, PM10, SO2, NO2, CO, O3}

// Pollutants returns the fixed pollutant set in display order.
func Pollutants() []Pollutant {
	out := make([]Pollutant, len(pollutants))
	copy(out, pollutants)
	return out
}

// ParsePollutant validates a pollutant identifier.
func ParsePollutant(s string) (Pollutant, error) {
	for _, p := range pollutants {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPollutant, s)
}

// Unit returns the concentration unit used for display.
func Unit(p Pollutant) string {
	if p == CO {
		return "mg/m³"
	}
	return "µg/m³"
}

// Category is an air-quality band and the colour it is drawn with
type Category struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	Good               = Category{Label: "Baik", Color: "#00e400"}
	Moderate           = Category{Label: "Sedang", Color: "#ffff00"}
	UnhealthySensitive = Category{Label: "Tidak Sehat untuk Kelompok Sensitif", Color: "#ff7e00"}
	Unhealthy          = Category{Label: "Tidak Sehat", Color: "#ff0000"}
	VeryUnhealthy      = Category{Label: "Sangat Tidak Sehat", Color: "#8F3F97"}
	Hazardous          = Category{Label: "Berbahaya", Color: "#7e0023"}
	Unavailable        = Category{Label: "Data Tidak Tersedia", Color: "#999999"}
)

var categories = []Category{Good, Moderate, UnhealthySensitive, Unhealthy, VeryUnhealthy, Hazardous, Unavailable}

// Categories returns every category in render order, ending with Unavailable.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Threshold is the inclusive upper bound of a category.
type Threshold struct {
	Category   Category
	UpperBound float64
}

// ThresholdTable is ordered by ascending bound; the last bound is +Inf.
type ThresholdTable []Threshold

func table(bounds ...float64) ThresholdTable {
	bands := []Category{Good, Moderate, UnhealthySensitive, Unhealthy, VeryUnhealthy}
	t := make(ThresholdTable, 0, len(bands)+1)
	for i, c := range bands {
		t = append(t, Threshold{Category: c, UpperBound: bounds[i]})
	}
	return append(t, Threshold{Category: Hazardous, UpperBound: math.Inf(1)})
}

var standards = map[Pollutant]ThresholdTable{
	PM25: table(12.0, 35.4, 55.4, 150.4, 250.4),
	PM10: table(54.0, 154.0, 254.0, 354.0, 424.0),
	SO2:  table(35.0, 75.0, 185.0, 304.0, 604.0),
	NO2:  table(53.0, 100.0, 360.0, 649.0, 1249.0),
	CO:   table(4.4, 9.4, 12.4, 15.4, 30.4),
	O3:   table(54.0, 70.0, 85.0, 105.0, 200.0),
}

// Table returns a copy of the threshold table for p.
func Table(p Pollutant) (ThresholdTable, error) {
	t, ok := standards[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPollutant, p)
	}
	out := make(ThresholdTable, len(t))
	copy(out, t)
	return out, nil
}

// Categorize maps a concentration to its band. NaN, negative and infinite
// values are not measurements and map to Unavailable.
func Categorize(p Pollutant, concentration float64) (Category, error) {
	t, ok := standards[p]
	if !ok {
		return Unavailable, fmt.Errorf("%w: %q", ErrUnknownPollutant, p)
	}
	if math.IsNaN(concentration) || math.IsInf(concentration, 0) || concentration < 0 {
		return Unavailable, nil
	}
	for _, th := range t {
		if concentration <= th.UpperBound {
			return th.Category, nil
		}
	}
	return Unavailable, nil
}
