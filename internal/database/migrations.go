package database

import (
	"riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Zone{},
		&models.Schedule{},
		&models.HistoryRecord{},
		&models.Sensor{},
		&models.Reading{},
	}
}

// AutoMigrate creates the tables first and adds relationships afterwards so
// foreign keys never point at a missing table.
func AutoMigrate(db *gorm.DB, log logger.Logger) error {
	log = log.Function("AutoMigrate")
	tables := Models()

	log.Info("Phase 1: Creating tables without foreign key constraints")
	db.Config.DisableForeignKeyConstraintWhenMigrating = true
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			if err := db.Migrator().CreateTable(table); err != nil {
				return log.Err("failed to create table structure", err)
			}
		}
	}

	db.Config.DisableForeignKeyConstraintWhenMigrating = false
	log.Info("Phase 2: Adding foreign key constraints and relationships")
	if err := db.AutoMigrate(tables...); err != nil {
		return log.Err("failed to add constraints", err)
	}

	return nil
}

func (s *DB) MigrateModels() error {
	return AutoMigrate(s.SQL, logger.New("database"))
}

// DropAll removes every table, children first.
func DropAll(db *gorm.DB) error {
	tables := Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return err
		}
	}
	return nil
}
