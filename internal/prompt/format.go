package prompt

import (
	"fmt"
	"math"
)

// minSec renders a duration in seconds as M:SS. Rounding happens on the
// total seconds first so 299.6 carries into the minutes (5:00, not 4:60).
func minSec(seconds float64) string {
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Pace renders a running pace in seconds per kilometre, e.g. 300 -> "5:00/km".
func Pace(secondsPerKM float64) string {
	return minSec(secondsPerKM) + "/km"
}

// SwimPace renders a swim pace in seconds per 100m, e.g. 63 -> "1:03/100m".
func SwimPace(secondsPer100m float64) string {
	return minSec(secondsPer100m) + "/100m"
}

// RaceTime renders a race duration as H:MM:SS, or MM:SS under an hour.
// 43200 -> "12:00:00", 1830 -> "30:30".
func RaceTime(totalSeconds int) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
