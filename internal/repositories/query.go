package repositories

import (
	"context"
	"errors"
	"strings"

	"riego/internal/constants"
	"riego/internal/database"
	"riego/internal/types"

	"gorm.io/gorm"
)

// Ordering maps API field names onto columns.
type Ordering map[string]string

// apply reads a comma separated list such as "-prioridad,nombre" and falls
// back to defaultOrder when no listed field is known.
func (o Ordering) apply(query *gorm.DB, ordering string, defaultOrder string) *gorm.DB {
	applied := false
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = strings.TrimPrefix(field, "-")
		}

		column, ok := o[field]
		if !ok {
			continue
		}
		query = query.Order(column + " " + direction)
		applied = true
	}

	if !applied && defaultOrder != "" {
		query = query.Order(defaultOrder)
	}

	return query
}

// applySearch ORs a case insensitive substring match over columns.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}

	pattern := likePattern(search)
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		clauses[i] = "LOWER(" + column + ") LIKE ?"
		args[i] = pattern
	}

	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func likePattern(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(resource)
	}
	return err
}

func clearStatisticsCache(ctx context.Context, cache database.CacheClient) error {
	return database.NewCacheBuilder(cache, constants.StatisticsKeys()).
		WithContext(ctx).
		WithHash(constants.StatisticsCachePrefix).
		Delete()
}
