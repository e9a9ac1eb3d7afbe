package repositories

import (
	"context"
	"strings"

	"riego/internal/database"
	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ZoneFilter struct {
	Name        string
	Type        ZoneType
	Status      ZoneStatus
	Active      *bool
	AreaMin     *decimal.Decimal
	AreaMax     *decimal.Decimal
	CapacityMin *decimal.Decimal
	CapacityMax *decimal.Decimal
	Search      string
	Ordering    string
}

var zoneOrdering = Ordering{
	"nombre":              "name",
	"areaM2":              "area_m2",
	"capacidadAguaLitros": "water_capacity",
	"createdAt":           "created_at",
}

type ZoneRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter ZoneFilter) ([]*Zone, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Zone, error)
	NameExists(ctx context.Context, tx *gorm.DB, name string, excludeID int) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, zone *Zone) error
	Update(ctx context.Context, tx *gorm.DB, zone *Zone) error
	Delete(ctx context.Context, tx *gorm.DB, id int) error
}

type zoneRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewZoneRepository(cache database.CacheClient) ZoneRepository {
	return &zoneRepository{
		cache: cache,
		log:   logger.New("zoneRepository"),
	}
}

func (r *zoneRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ZoneFilter,
) ([]*Zone, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Zone{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(name))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.AreaMin != nil {
		query = query.Where("area_m2 >= ?", *filter.AreaMin)
	}
	if filter.AreaMax != nil {
		query = query.Where("area_m2 <= ?", *filter.AreaMax)
	}
	if filter.CapacityMin != nil {
		query = query.Where("water_capacity >= ?", *filter.CapacityMin)
	}
	if filter.CapacityMax != nil {
		query = query.Where("water_capacity <= ?", *filter.CapacityMax)
	}
	query = applySearch(query, filter.Search, "name", "description", "location")
	query = zoneOrdering.apply(query, filter.Ordering, "name ASC")

	var zones []*Zone
	if err := query.Find(&zones).Error; err != nil {
		return nil, log.Err("failed to list zones", err)
	}

	return zones, nil
}

func (r *zoneRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Zone, error) {
	log := r.log.Function("GetByID")

	zone, err := gorm.G[Zone](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get zone", notFound(err, "zone"), "id", id)
	}

	return &zone, nil
}

func (r *zoneRepository) NameExists(
	ctx context.Context,
	tx *gorm.DB,
	name string,
	excludeID int,
) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&Zone{}).
		Where("name = ? AND id <> ?", strings.TrimSpace(name), excludeID).
		Count(&count).Error
	if err != nil {
		return false, r.log.Function("NameExists").Err("failed to check zone name", err)
	}

	return count > 0, nil
}

func (r *zoneRepository) Create(ctx context.Context, tx *gorm.DB, zone *Zone) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(zone).Error; err != nil {
		return log.Err("failed to create zone", err, "name", zone.Name)
	}

	r.clearCache(ctx)

	return nil
}

func (r *zoneRepository) Update(ctx context.Context, tx *gorm.DB, zone *Zone) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Save(zone).Error; err != nil {
		return log.Err("failed to update zone", err, "id", zone.ID)
	}

	r.clearCache(ctx)

	return nil
}

// Delete removes the zone with its sensors, readings, schedules and history.
func (r *zoneRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	if _, err := r.GetByID(ctx, tx, id); err != nil {
		return err
	}

	db := tx.WithContext(ctx)
	sensorIDs := db.Model(&Sensor{}).Select("id").Where("zone_id = ?", id)
	if err := db.Where("sensor_id IN (?)", sensorIDs).Delete(&Reading{}).Error; err != nil {
		return log.Err("failed to delete zone readings", err, "id", id)
	}

	if err := db.Where("zone_id = ?", id).Delete(&Sensor{}).Error; err != nil {
		return log.Err("failed to delete zone sensors", err, "id", id)
	}

	scheduleIDs := db.Model(&Schedule{}).Select("id").Where("zone_id = ?", id)
	if err := db.Where("zone_id = ? OR schedule_id IN (?)", id, scheduleIDs).
		Delete(&HistoryRecord{}).Error; err != nil {
		return log.Err("failed to delete zone history", err, "id", id)
	}

	if err := db.Where("zone_id = ?", id).Delete(&Schedule{}).Error; err != nil {
		return log.Err("failed to delete zone schedules", err, "id", id)
	}

	if err := db.Delete(&Zone{}, id).Error; err != nil {
		return log.Err("failed to delete zone", err, "id", id)
	}

	r.clearCache(ctx)

	return nil
}

func (r *zoneRepository) clearCache(ctx context.Context) {
	if err := clearStatisticsCache(ctx, r.cache); err != nil {
		r.log.Function("clearCache").Warn("failed to clear statistics cache", "error", err)
	}
}
