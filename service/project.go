package service

import (
	"context"
	"errors"
	"fmt"

	"taskflow/authz"
	"taskflow/dao/model"
	"taskflow/errs"
	"taskflow/logutils"

	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	authz *authz.Authorizer
}

type CreateProjectInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,max=32"`
}

type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,max=32"`
}

type AddMemberInput struct {
	Email string      `json:"email" validate:"required,email"`
	Role  *model.Role `json:"role" validate:"omitempty,memberrole"`
}

// Create stores the project and the caller's OWNER membership in one
// transaction.
func (s *ProjectService) Create(ctx context.Context, userID uint, in CreateProjectInput) (*model.Project, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	project := model.Project{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		CreatedByID: userID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		owner := model.ProjectMembership{UserID: userID, ProjectID: project.ID, Role: model.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logutils.Log.WithFields(logutils.Fields{"project": project.ID, "user": userID}).Info("project created")
	return &project, nil
}

// List returns every project the caller is a member of, most recently updated
// first, with creator, members and task count.
func (s *ProjectService) List(ctx context.Context, userID uint) ([]model.Project, error) {
	db := s.db.WithContext(ctx)
	memberOf := db.Model(&model.ProjectMembership{}).Select("project_id").Where("user_id = ?", userID)

	var projects []model.Project
	err := db.
		Where("id IN (?)", memberOf).
		Preload("CreatedBy", userSummary).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Members.User", userSummary).
		Order("updated_at DESC").Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]uint, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	var counts []struct {
		ProjectID uint
		N         int64
	}
	err = db.Model(&model.Task{}).
		Select("project_id, COUNT(*) AS n").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	byProject := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byProject[c.ProjectID] = c.N
	}
	for i := range projects {
		projects[i].TaskCount = byProject[projects[i].ID]
	}
	return projects, nil
}

// Get returns the full project: creator, members and tasks newest first.
// A caller without membership gets the same error as for a missing project.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*model.Project, error) {
	if _, err := s.authz.Authorize(ctx, userID, projectID, authz.ActionViewProject); err != nil {
		return nil, err
	}
	var project model.Project
	err := s.db.WithContext(ctx).
		Preload("CreatedBy", userSummary).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Members.User", userSummary).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Order("id DESC") }).
		Preload("Tasks.AssignedTo", userSummary).
		Preload("Tasks.Tags.Tag").
		Take(&project, projectID).Error
	if err != nil {
		return nil, notFoundOr(err, "project")
	}
	project.TaskCount = int64(len(project.Tasks))
	return &project, nil
}

// Update applies the non-nil fields. OWNER or ADMIN only.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, in UpdateProjectInput) (*model.Project, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var project model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.authz.With(tx).Authorize(ctx, userID, projectID, authz.ActionUpdateProject); err != nil {
			return err
		}
		if err := tx.Take(&project, projectID).Error; err != nil {
			return notFoundOr(err, "project")
		}
		updates := map[string]any{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Color != nil {
			updates["color"] = *in.Color
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&project).Updates(updates).Error; err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		return tx.Take(&project, projectID).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes the project with its tasks, their comments and tags, and
// every membership. OWNER only.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.authz.With(tx).Authorize(ctx, userID, projectID, authz.ActionDeleteProject); err != nil {
			return err
		}
		tasks := tx.Model(&model.Task{}).Select("id").Where("project_id = ?", projectID)
		steps := []struct {
			what string
			run  func() error
		}{
			{"task tags", func() error { return tx.Where("task_id IN (?)", tasks).Delete(&model.TaskTag{}).Error }},
			{"comments", func() error { return tx.Where("task_id IN (?)", tasks).Delete(&model.TaskComment{}).Error }},
			{"tasks", func() error { return tx.Where("project_id = ?", projectID).Delete(&model.Task{}).Error }},
			{"memberships", func() error {
				return tx.Where("project_id = ?", projectID).Delete(&model.ProjectMembership{}).Error
			}},
			{"project", func() error { return tx.Delete(&model.Project{}, projectID).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("delete %s: %w", step.what, err)
			}
		}
		logutils.Log.WithFields(logutils.Fields{"project": projectID, "user": userID}).Info("project deleted")
		return nil
	})
}

// AddMember grants a role to the user registered under in.Email. The role
// defaults to MEMBER; OWNER cannot be granted.
func (s *ProjectService) AddMember(ctx context.Context, userID, projectID uint, in AddMemberInput) (*model.ProjectMembership, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	role := model.RoleMember
	if in.Role != nil {
		role = *in.Role
	}

	var membership model.ProjectMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := s.authz.With(tx)
		if _, err := a.Authorize(ctx, userID, projectID, authz.ActionAddMember); err != nil {
			return err
		}
		var target model.User
		err := tx.Select(model.UserSummaryColumns).Where("email = ?", normalizeEmail(in.Email)).Take(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		existing, err := a.MembershipOf(ctx, target.ID, projectID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.ErrAlreadyMember
		}

		membership = model.ProjectMembership{UserID: target.ID, ProjectID: projectID, Role: role}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAlreadyMember
			}
			return fmt.Errorf("create membership: %w", err)
		}
		membership.User = &target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// RemoveMember deletes the target's membership. The OWNER row can never be
// removed, whoever asks.
func (s *ProjectService) RemoveMember(ctx context.Context, userID, projectID, targetUserID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := s.authz.With(tx)
		if _, err := a.Authorize(ctx, userID, projectID, authz.ActionRemoveMember); err != nil {
			return err
		}
		target, err := a.MembershipOf(ctx, targetUserID, projectID)
		if err != nil {
			return err
		}
		if target == nil {
			return errs.NotFound("member")
		}
		if target.Role == model.RoleOwner {
			return errs.ErrCannotRemoveOwner
		}
		if err := tx.Delete(target).Error; err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}
