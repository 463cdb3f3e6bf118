package models

import (
	"encoding/json"
	"math"
	"time"

	"airquality-dashboard/internal/aqi"
)

// Nullable returns nil for NaN and infinities so that means with no
// contributing samples encode as JSON null.
func Nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PollutantInfo describes a selectable pollutant.
type PollutantInfo struct {
	Pollutant aqi.Pollutant `json:"pollutant"`
	Unit      string        `json:"unit"`
}

// TrendPoint holds the monthly means for one calendar month (YYYY-MM).
type TrendPoint struct {
	Month  string                     `json:"month"`
	Values map[aqi.Pollutant]*float64 `json:"values"`
}

// TrendView is the monthly pollutant trend at one station.
type TrendView struct {
	Station    string          `json:"station"`
	Pollutants []aqi.Pollutant `json:"pollutants"`
	Points     []TrendPoint    `json:"points"`
}

// StationAverage is a station's mean per pollutant.
type StationAverage struct {
	Station string                     `json:"station"`
	Means   map[aqi.Pollutant]*float64 `json:"means"`
	Total   float64                    `json:"total"`
	Highest bool                       `json:"highest"`
}

// ComparisonView compares average concentrations across stations.
type ComparisonView struct {
	Pollutants []aqi.Pollutant  `json:"pollutants"`
	Stations   []StationAverage `json:"stations"`
	Highest    string           `json:"highest_station"`
}

// HourlyMean is the mean concentration at one hour of the day.
type HourlyMean struct {
	Hour int      `json:"hour"`
	Mean *float64 `json:"mean"`
}

// HourlyView breaks a pollutant down by hour of day.
type HourlyView struct {
	Pollutant  aqi.Pollutant `json:"pollutant"`
	Unit       string        `json:"unit"`
	Hours      []HourlyMean  `json:"hours"`
	BestHour   *int          `json:"best_hour"`
	BestValue  *float64      `json:"best_value"`
	WorstHour  *int          `json:"worst_hour"`
	WorstValue *float64      `json:"worst_value"`
	Morning    *float64      `json:"morning"`
	Afternoon  *float64      `json:"afternoon"`
	Night      *float64      `json:"night"`
}

// MapMode tells the client how to draw a MapView.
type MapMode string

const (
	MapModeCategory MapMode = "category"
	MapModeSimple   MapMode = "simple"
)

// MapPoint is a geocoded station on the map.
type MapPoint struct {
	Station   string   `json:"station"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Value     *float64 `json:"value"`
	Category  string   `json:"category,omitempty"`
	Color     string   `json:"color,omitempty"`
	Size      float64  `json:"size,omitempty"`
}

// CategoryGroup is the set of stations drawn in one category colour.
type CategoryGroup struct {
	Category aqi.Category `json:"category"`
	Points   []MapPoint   `json:"points"`
}

// MapView is the per-station category map for one pollutant.
type MapView struct {
	Mode      MapMode         `json:"mode"`
	Pollutant aqi.Pollutant   `json:"pollutant"`
	Unit      string          `json:"unit"`
	Title     string          `json:"title"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Groups    []CategoryGroup `json:"groups,omitempty"`
	Points    []MapPoint      `json:"points,omitempty"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
	Warnings  []string        `json:"warnings"`
}
