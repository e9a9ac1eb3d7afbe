package models

import (
	"time"
)

type BaseModel struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                    json:"updatedAt"`
}

// DATE_LAYOUT is the wire format for calendar dates.
const DATE_LAYOUT = "2006-01-02"

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value into a UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DATE_LAYOUT, value, time.UTC)
}
