package constants

import "time"

// Keys are composed by CacheBuilder as "<prefix>:<key>".
const (
	StatisticsCachePrefix  = "estadisticas"
	ZoneStatisticsKey      = "zonas"
	ScheduleStatisticsKey  = "programaciones"

	UserCachePrefix = "user"
	UserCacheExpiry = 24 * time.Hour
)

// StatisticsKeys lists every aggregate that a write to zones, schedules or
// history can invalidate.
func StatisticsKeys() []string {
	return []string{ZoneStatisticsKey, ScheduleStatisticsKey}
}
