package query

import (
	"fmt"

	"taskflow/dao/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

var migrations = []*gormigrate.Migration{
	{
		// one OWNER row per project, enforced by the store as well
		ID:      "202610180001",
		Migrate: createSingleOwnerIndex,
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP INDEX IF EXISTS idx_membership_single_owner").Error
		},
	},
}

// Migrate creates the schema on an empty database, otherwise applies the
// migrations that have not run yet.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)

	m.InitSchema(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(model.AllModels()...); err != nil {
			return err
		}
		return createSingleOwnerIndex(tx)
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("could not migrate: %w", err)
	}
	return nil
}

// Rollback undoes the most recent migration.
func Rollback(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	return m.RollbackLast()
}

func createSingleOwnerIndex(tx *gorm.DB) error {
	return tx.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_single_owner ON project_memberships (project_id) WHERE role = %d",
		uint8(model.RoleOwner),
	)).Error
}
