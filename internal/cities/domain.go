// Package cities serves the read-only catalog of city AQI readings.
package cities

import "github.com/airwatch-bd/airwatch/internal/aqi"

// City is one catalog row.
type City struct {
	Name string `json:"name"`
	AQI  int    `json:"aqi"`
}

// Reading pairs a city with its classified AQI category.
type Reading struct {
	City
	Category aqi.Category `json:"category"`
}

// Classify attaches AQI categories to the given cities, keeping their order.
func Classify(list []City) []Reading {
	out := make([]Reading, 0, len(list))
	for _, c := range list {
		out = append(out, Reading{City: c, Category: aqi.Classify(c.AQI)})
	}
	return out
}
