package models

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall clock time stored as HH:MM:SS so lexical order matches
// chronological order.
type TimeOfDay string

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return TimeOfDay(t.Format("15:04:05")), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", value)
}

func (t TimeOfDay) Valid() bool {
	_, err := ParseTimeOfDay(string(t))
	return err == nil
}

// Normalize returns the HH:MM:SS form, or the value untouched when it is not a time.
func (t TimeOfDay) Normalize() TimeOfDay {
	normalized, err := ParseTimeOfDay(string(t))
	if err != nil {
		return t
	}
	return normalized
}

// Short renders HH:MM.
func (t TimeOfDay) Short() string {
	normalized := t.Normalize()
	if len(normalized) >= 5 {
		return string(normalized[:5])
	}
	return string(normalized)
}

// AddMinutes wraps around midnight.
func (t TimeOfDay) AddMinutes(minutes int) TimeOfDay {
	parsed, err := time.Parse("15:04:05", string(t.Normalize()))
	if err != nil {
		return t
	}
	return TimeOfDay(parsed.Add(time.Duration(minutes) * time.Minute).Format("15:04:05"))
}
