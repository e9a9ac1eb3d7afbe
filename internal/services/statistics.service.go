package services

import (
	"context"
	"time"

	"riego/internal/constants"
	"riego/internal/database"
	"riego/internal/models"
	"riego/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
)

type ZoneStats struct {
	Total           int              `json:"totalZonas"`
	Active          int              `json:"zonasActivas"`
	Inactive        int              `json:"zonasInactivas"`
	TotalArea       decimal.Decimal  `json:"areaTotal"`
	TotalCapacity   decimal.Decimal  `json:"capacidadTotal"`
	AverageArea     *decimal.Decimal `json:"areaPromedio"`
	AverageCapacity *decimal.Decimal `json:"capacidadPromedio"`
	ByType          map[string]int   `json:"porTipo"`
	ByStatus        map[string]int   `json:"porEstado"`
}

type ScheduleStats struct {
	Total            int              `json:"totalProgramaciones"`
	Active           int              `json:"programacionesActivas"`
	Inactive         int              `json:"programacionesInactivas"`
	Current          int              `json:"programacionesVigentes"`
	TotalConsumption decimal.Decimal  `json:"consumoTotalEstimado"`
	TotalDuration    int              `json:"duracionTotal"`
	AverageDuration  *decimal.Decimal `json:"duracionPromedio"`
	AverageFlowRate  *decimal.Decimal `json:"caudalPromedio"`
	ByFrequency      map[string]int   `json:"porFrecuencia"`
}

func mean(sum decimal.Decimal, count int) *decimal.Decimal {
	if count == 0 {
		return nil
	}
	value := sum.DivRound(decimal.NewFromInt(int64(count)), 2)
	return &value
}

// ComputeZoneStatistics aggregates a snapshot of zones. Enum buckets only
// contain values that occur.
func ComputeZoneStatistics(zones []*models.Zone) ZoneStats {
	stats := ZoneStats{
		TotalArea:     decimal.Zero,
		TotalCapacity: decimal.Zero,
		ByType:        map[string]int{},
		ByStatus:      map[string]int{},
	}

	for _, zone := range zones {
		stats.Total++
		if zone.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.TotalArea = stats.TotalArea.Add(zone.AreaM2)
		stats.TotalCapacity = stats.TotalCapacity.Add(zone.WaterCapacity)
		stats.ByType[string(zone.Type)]++
		stats.ByStatus[string(zone.Status)]++
	}

	stats.AverageArea = mean(stats.TotalArea, stats.Total)
	stats.AverageCapacity = mean(stats.TotalCapacity, stats.Total)

	return stats
}

// ComputeScheduleStatistics aggregates a snapshot of schedules. A schedule is
// current when it is active and today falls inside its date range.
func ComputeScheduleStatistics(schedules []*models.Schedule, today time.Time) ScheduleStats {
	stats := ScheduleStats{
		TotalConsumption: decimal.Zero,
		ByFrequency:      map[string]int{},
	}

	flowSum := decimal.Zero
	for _, schedule := range schedules {
		stats.Total++
		if schedule.Active {
			stats.Active++
			if schedule.IsCurrent(today) {
				stats.Current++
			}
		} else {
			stats.Inactive++
		}
		stats.TotalConsumption = stats.TotalConsumption.Add(schedule.TotalConsumption())
		stats.TotalDuration += schedule.DurationMinutes
		flowSum = flowSum.Add(schedule.FlowRate)
		stats.ByFrequency[string(schedule.Frequency)]++
	}

	stats.AverageDuration = mean(decimal.NewFromInt(int64(stats.TotalDuration)), stats.Total)
	stats.AverageFlowRate = mean(flowSum, stats.Total)

	return stats
}

// CurrentSchedules keeps the active schedules whose range covers today.
func CurrentSchedules(schedules []*models.Schedule, today time.Time) []*models.Schedule {
	current := make([]*models.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if schedule.Active && schedule.IsCurrent(today) {
			current = append(current, schedule)
		}
	}
	return current
}

type StatisticsService struct {
	db    database.DB
	repos repositories.Repository
	ttl   time.Duration
	now   func() time.Time
	log   logger.Logger
}

func NewStatisticsService(
	db database.DB,
	repos repositories.Repository,
	ttl time.Duration,
) *StatisticsService {
	return &StatisticsService{
		db:    db,
		repos: repos,
		ttl:   ttl,
		now:   time.Now,
		log:   logger.New("statisticsService"),
	}
}

// Zones returns statistics over the zones matching filter. Unfiltered
// results are cached.
func (s *StatisticsService) Zones(ctx context.Context, filter repositories.ZoneFilter) (ZoneStats, error) {
	log := s.log.Function("Zones")

	cacheable := filter == (repositories.ZoneFilter{})
	var stats ZoneStats
	if cacheable && s.getCached(ctx, constants.ZoneStatisticsKey, &stats) {
		return stats, nil
	}

	zones, err := s.repos.Zone.List(ctx, s.db.SQLWithContext(ctx), filter)
	if err != nil {
		return ZoneStats{}, log.Err("failed to load zones", err)
	}

	stats = ComputeZoneStatistics(zones)
	if cacheable {
		s.setCached(ctx, constants.ZoneStatisticsKey, stats)
	}

	return stats, nil
}

// Schedules returns statistics over the schedules matching filter.
func (s *StatisticsService) Schedules(
	ctx context.Context,
	filter repositories.ScheduleFilter,
) (ScheduleStats, error) {
	log := s.log.Function("Schedules")

	cacheable := filter == (repositories.ScheduleFilter{})
	var stats ScheduleStats
	if cacheable && s.getCached(ctx, constants.ScheduleStatisticsKey, &stats) {
		return stats, nil
	}

	schedules, err := s.repos.Schedule.List(ctx, s.db.SQLWithContext(ctx), filter)
	if err != nil {
		return ScheduleStats{}, log.Err("failed to load schedules", err)
	}

	stats = ComputeScheduleStatistics(schedules, s.now().UTC())
	if cacheable {
		s.setCached(ctx, constants.ScheduleStatisticsKey, stats)
	}

	return stats, nil
}

// Current lists the active schedules in effect today.
func (s *StatisticsService) Current(
	ctx context.Context,
	filter repositories.ScheduleFilter,
) ([]*models.Schedule, error) {
	active := true
	filter.Active = &active

	schedules, err := s.repos.Schedule.List(ctx, s.db.SQLWithContext(ctx), filter)
	if err != nil {
		return nil, s.log.Function("Current").Err("failed to load schedules", err)
	}

	return CurrentSchedules(schedules, s.now().UTC()), nil
}

func (s *StatisticsService) getCached(ctx context.Context, key string, result any) bool {
	found, err := database.NewCacheBuilder(s.db.Cache.General, key).
		WithContext(ctx).
		WithHash(constants.StatisticsCachePrefix).
		Get(result)
	if err != nil {
		s.log.Function("getCached").Warn("failed to read statistics cache", "key", key, "error", err)
		return false
	}
	return found
}

func (s *StatisticsService) setCached(ctx context.Context, key string, value any) {
	if s.ttl <= 0 {
		return
	}

	err := database.NewCacheBuilder(s.db.Cache.General, key).
		WithContext(ctx).
		WithHash(constants.StatisticsCachePrefix).
		WithStruct(value).
		WithTTL(s.ttl).
		Set()
	if err != nil {
		s.log.Function("setCached").Warn("failed to write statistics cache", "key", key, "error", err)
	}
}
