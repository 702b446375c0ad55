package query

import (
	"taskflow/config"
	"taskflow/logutils"
	"taskflow/orm"

	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the configured database, brings the schema up to date and
// stores the handle in DB.
func InitDB(cfg *config.Config) error {
	db, err := orm.Open(cfg)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db

	logutils.Log.WithField("driver", cfg.Database.Driver).Info("database init success!")
	return nil
}

// NewMemoryDB returns a migrated, private in-memory SQLite database.
func NewMemoryDB() (*gorm.DB, error) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = orm.MemoryDSN

	db, err := orm.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
