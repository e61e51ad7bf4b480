// Package aqi buckets Air Quality Index readings into health categories.
package aqi

import "strconv"

// Level identifies an AQI health category.
type Level string

const (
	LevelGood                        Level = "good"
	LevelModerate                    Level = "moderate"
	LevelUnhealthyForSensitiveGroups Level = "unhealthy-sensitive"
	LevelUnhealthy                   Level = "unhealthy"
	LevelVeryUnhealthy               Level = "very-unhealthy"
	LevelHazardous                   Level = "hazardous"
)

// Category is the display information for an AQI value.
type Category struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Band is one row of the AQI scale reference.
type Band struct {
	Min       int
	Max       int // -1 means unbounded
	Category  Category
	ColorName string
}

// Range renders the band bounds for display.
func (b Band) Range() string {
	if b.Max < 0 {
		return strconv.Itoa(b.Min) + "+"
	}
	return strconv.Itoa(b.Min) + " - " + strconv.Itoa(b.Max)
}

// bands is ordered highest threshold first; Classify depends on that order.
var bands = []Band{
	{Min: 301, Max: -1, Category: Category{Level: LevelHazardous, Label: "Hazardous", Color: "#b71c1c"}, ColorName: "Maroon"},
	{Min: 201, Max: 300, Category: Category{Level: LevelVeryUnhealthy, Label: "Very Unhealthy", Color: "#e57373"}, ColorName: "Purple"},
	{Min: 151, Max: 200, Category: Category{Level: LevelUnhealthy, Label: "Unhealthy", Color: "#ff8a65"}, ColorName: "Red"},
	{Min: 101, Max: 150, Category: Category{Level: LevelUnhealthyForSensitiveGroups, Label: "Unhealthy for Sensitive Groups", Color: "#ffb74d"}, ColorName: "Orange"},
	{Min: 51, Max: 100, Category: Category{Level: LevelModerate, Label: "Moderate", Color: "#fdd835"}, ColorName: "Yellow"},
	{Min: 0, Max: 50, Category: Category{Level: LevelGood, Label: "Good", Color: "#a8e05f"}, ColorName: "Green"},
}

// Classify maps a non-negative AQI to its category. Callers must not pass negative
// values; they fall through to Good.
func Classify(value int) Category {
	for _, b := range bands {
		if value >= b.Min {
			return b.Category
		}
	}
	return bands[len(bands)-1].Category
}

// Scale returns the reference table from the cleanest band to the most severe.
func Scale() []Band {
	out := make([]Band, len(bands))
	for i, b := range bands {
		out[len(bands)-1-i] = b
	}
	return out
}
