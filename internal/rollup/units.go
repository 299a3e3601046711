package rollup

import (
	"fmt"
	"math"

	"github.com/julianstephens/komaplan/internal/constants"
)

// SessionsToUnits converts sessions to 45-minute units, keeping six decimal digits.
func SessionsToUnits(sessions int) float64 {
	return math.Round(float64(sessions)/constants.SessionsPerUnit*constants.UnitPrecision) / constants.UnitPrecision
}

// UnitsToSessions converts units to the nearest whole number of sessions.
func UnitsToSessions(units float64) int {
	return int(math.Round(units * constants.SessionsPerUnit))
}

// FormatUnits renders sessions as a mixed number of units: "12", "12 1/3", "-2/3".
func FormatUnits(sessions int) string {
	sign := ""
	if sessions < 0 {
		sign = "-"
		sessions = -sessions
	}
	whole, thirds := sessions/constants.SessionsPerUnit, sessions%constants.SessionsPerUnit
	switch {
	case thirds == 0:
		if whole == 0 {
			return "0"
		}
		return fmt.Sprintf("%s%d", sign, whole)
	case whole == 0:
		return fmt.Sprintf("%s%d/%d", sign, thirds, constants.SessionsPerUnit)
	default:
		return fmt.Sprintf("%s%d %d/%d", sign, whole, thirds, constants.SessionsPerUnit)
	}
}

// FormatSignedUnits is FormatUnits with an explicit "+" for positive values.
func FormatSignedUnits(sessions int) string {
	if sessions > 0 {
		return "+" + FormatUnits(sessions)
	}
	return FormatUnits(sessions)
}
