package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SwissDateLayout is the DD.MM.YYYY layout used by registry exports.
const SwissDateLayout = "02.01.2006"

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frenchWeekdays = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// Use the global logger here, assuming logger might not be configured when this is called.
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseSwissDate parses "31.12.2001" in loc. An empty string yields nil without error.
func ParseSwissDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(SwissDateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("date %q invalide, format attendu JJ.MM.AAAA", value)
	}
	return &d, nil
}

// FormatLongDate renders d the French way, "5 mars 2024".
func FormatLongDate(d time.Time) string {
	return fmt.Sprintf("%d %s %d", d.Day(), frenchMonths[d.Month()-1], d.Year())
}

// FormatWeekday renders "lundi 3 juin".
func FormatWeekday(d time.Time) string {
	return fmt.Sprintf("%s %d %s", frenchWeekdays[d.Weekday()], d.Day(), frenchMonths[d.Month()-1])
}

// FormatLongDateTime renders "mardi 3 juin 2025 à 14h30".
func FormatLongDateTime(d time.Time) string {
	return fmt.Sprintf("%s %d à %dh%02d", FormatWeekday(d), d.Year(), d.Hour(), d.Minute())
}

// SameDate compares two optional dates by calendar day.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
