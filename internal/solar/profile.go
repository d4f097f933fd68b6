package solar

import (
	"time"
)

// ProfilePoint is one sampled instant of a daily profile.
type ProfilePoint struct {
	At        time.Time `json:"at"`
	Azimuth   float64   `json:"azimuth"`
	Elevation float64   `json:"elevation"`
	Angle     float64   `json:"angle"`
	Heat      float64   `json:"heat"`
}

// Window is a span of the day during which the sun meaningfully loads
// the facade.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// profileStep is the sampling interval for daily profiles. Fifteen
// minutes resolves the hitting window to well under the evaluation
// interval without bloating API responses.
const profileStep = 15 * time.Minute

// DailyProfile samples the facade across one calendar day in the given
// location, from midnight to midnight in at's own time zone.
func (s Site) DailyProfile(wallAzimuth float64, at time.Time) []ProfilePoint {
	year, month, day := at.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, at.Location())
	end := start.AddDate(0, 0, 1)

	var points []ProfilePoint
	for t := start; t.Before(end); t = t.Add(profileStep) {
		sample := s.Evaluate(wallAzimuth, t)
		points = append(points, ProfilePoint{
			At:        t,
			Azimuth:   sample.Sun.Azimuth,
			Elevation: sample.Sun.Elevation,
			Angle:     sample.Angle,
			Heat:      sample.Heat,
		})
	}
	return points
}

// HittingWindow scans a day's profile for the span where the facade heat
// gain is at or above the threshold. Returns ok=false when the sun never
// loads the facade that hard (winter days, north faces).
//
// A facade has at most one such span per day; the sun sweeps past it once.
func HittingWindow(points []ProfilePoint, threshold float64) (Window, bool) {
	var window Window
	found := false

	for _, p := range points {
		if p.Heat < threshold {
			continue
		}
		if !found {
			window.From = p.At
			found = true
		}
		window.To = p.At
	}

	return window, found
}
