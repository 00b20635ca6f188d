package collector

import (
	"fmt"
	"time"
)

// accountAge renders an account creation time as "<n>.<n> years" or
// "<n> days", matching what the results page displays.
func accountAge(createdUTC float64, now time.Time) string {
	if createdUTC == 0 {
		return "Unknown"
	}
	days := int(now.Sub(time.Unix(int64(createdUTC), 0)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	years := float64(days) / 365.25
	if years >= 1 {
		return fmt.Sprintf("%.1f years", years)
	}
	return fmt.Sprintf("%d days", days)
}
