// Package service implements the project, task, tag and user operations on
// top of the store. Every operation that touches a project or a task goes
// through authz first.
package service

import (
	"errors"

	"taskflow/authz"
	"taskflow/dao/model"
	"taskflow/errs"

	"gorm.io/gorm"
)

// Services bundles the operation sets served over HTTP.
type Services struct {
	Projects *ProjectService
	Tasks    *TaskService
	Tags     *TagService
	Users    *UserService
}

// New wires the services to db. bcryptCost is the work factor for new
// password hashes.
func New(db *gorm.DB, bcryptCost int) *Services {
	a := authz.New(db)
	return &Services{
		Projects: &ProjectService{db: db, authz: a},
		Tasks:    &TaskService{db: db, authz: a},
		Tags:     &TagService{db: db},
		Users:    &UserService{db: db, bcryptCost: bcryptCost},
	}
}

// userSummary limits an embedded user to its public columns.
func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select(model.UserSummaryColumns)
}

func projectSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "color")
}

// notFoundOr maps gorm's missing-row error to a domain NotFound and passes
// everything else through.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(what)
	}
	return err
}
