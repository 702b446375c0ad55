// Package authz decides whether a user may act on a project or task. It only
// reads membership rows; it never mutates anything.
//
// Every lookup treats "no membership" exactly like "no such project": the
// caller gets errs.KindNotFound before any role check runs, so a non-member
// cannot learn that a project or task exists.
package authz

import (
	"context"
	"errors"
	"fmt"

	"taskflow/dao/model"
	"taskflow/errs"

	"gorm.io/gorm"
)

type Action uint8

const (
	ActionViewProject Action = iota + 1
	ActionUpdateProject
	ActionDeleteProject
	ActionAddMember
	ActionRemoveMember
	ActionCreateTask
	ActionAddComment
)

func (a Action) String() string {
	switch a {
	case ActionViewProject:
		return "view project"
	case ActionUpdateProject:
		return "update project"
	case ActionDeleteProject:
		return "delete project"
	case ActionAddMember:
		return "add member"
	case ActionRemoveMember:
		return "remove member"
	case ActionCreateTask:
		return "create task"
	case ActionAddComment:
		return "add comment"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// RoleSet is an explicit allow-list. Roles are not ordered; a role is allowed
// only if it is listed.
type RoleSet []model.Role

func (s RoleSet) Contains(r model.Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}

var (
	AnyMember     = RoleSet{model.RoleOwner, model.RoleAdmin, model.RoleMember}
	OwnerOrAdmin  = RoleSet{model.RoleOwner, model.RoleAdmin}
	OwnerOnly     = RoleSet{model.RoleOwner}
	projectPolicy = map[Action]RoleSet{
		ActionViewProject:   AnyMember,
		ActionCreateTask:    AnyMember,
		ActionAddComment:    AnyMember,
		ActionUpdateProject: OwnerOrAdmin,
		ActionAddMember:     OwnerOrAdmin,
		ActionRemoveMember:  OwnerOrAdmin,
		ActionDeleteProject: OwnerOnly,
	}
)

// Allowed returns the roles permitted to perform a project-level action.
func Allowed(action Action) RoleSet {
	return projectPolicy[action]
}

type Authorizer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// With returns an Authorizer that reads through tx, so checks and the writes
// they guard share one transaction.
func (a *Authorizer) With(tx *gorm.DB) *Authorizer {
	return &Authorizer{db: tx}
}

// MembershipOf returns the caller's membership, or nil when there is none.
func (a *Authorizer) MembershipOf(ctx context.Context, userID, projectID uint) (*model.ProjectMembership, error) {
	var m model.ProjectMembership
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return &m, nil
}

// RequireMember fails with the visibility error when the user has no
// membership in the project.
func (a *Authorizer) RequireMember(ctx context.Context, userID, projectID uint) (*model.ProjectMembership, error) {
	m, err := a.MembershipOf(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NotFound("project")
	}
	return m, nil
}

func (a *Authorizer) RequireRole(ctx context.Context, userID, projectID uint, allowed RoleSet) (*model.ProjectMembership, error) {
	m, err := a.RequireMember(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed.Contains(m.Role) {
		return nil, errs.InsufficientPermissions("insufficient permissions")
	}
	return m, nil
}

// Authorize checks a project-level action against its allow-list.
func (a *Authorizer) Authorize(ctx context.Context, userID, projectID uint, action Action) (*model.ProjectMembership, error) {
	allowed, ok := projectPolicy[action]
	if !ok {
		return nil, fmt.Errorf("no policy for %s", action)
	}
	m, err := a.RequireRole(ctx, userID, projectID, allowed)
	if errors.Is(err, errs.ErrInsufficientPermissions) {
		return nil, errs.InsufficientPermissions("insufficient permissions to %s", action)
	}
	return m, err
}

// VisibleTask loads a task together with the caller's membership in its
// project. Tasks in projects the caller does not belong to are reported as
// not found.
func (a *Authorizer) VisibleTask(ctx context.Context, userID, taskID uint) (*model.Task, *model.ProjectMembership, error) {
	var task model.Task
	err := a.db.WithContext(ctx).Take(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, errs.NotFound("task")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load task: %w", err)
	}

	m, err := a.MembershipOf(ctx, userID, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, errs.NotFound("task")
	}
	return &task, m, nil
}

// CanModifyTask: the creator, the assignee, or a project OWNER/ADMIN.
func CanModifyTask(userID uint, task *model.Task, m *model.ProjectMembership) bool {
	if task.CreatedByID == userID {
		return true
	}
	if task.AssignedToID != nil && *task.AssignedToID == userID {
		return true
	}
	return m != nil && m.UserID == userID && OwnerOrAdmin.Contains(m.Role)
}

// CanDeleteTask: the creator or a project OWNER/ADMIN. Being the assignee is
// not enough.
func CanDeleteTask(userID uint, task *model.Task, m *model.ProjectMembership) bool {
	if task.CreatedByID == userID {
		return true
	}
	return m != nil && m.UserID == userID && OwnerOrAdmin.Contains(m.Role)
}
