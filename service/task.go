package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"taskflow/authz"
	"taskflow/dao/model"
	"taskflow/errs"
	"taskflow/logutils"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type TaskService struct {
	db    *gorm.DB
	authz *authz.Authorizer
	now   func() time.Time
}

type CreateTaskInput struct {
	Title        string              `json:"title" validate:"required,min=1,max=200"`
	Description  *string             `json:"description"`
	ProjectID    uint                `json:"projectId" validate:"required"`
	AssignedToID *uint               `json:"assignedToId" validate:"omitempty,gt=0"`
	Priority     *model.TaskPriority `json:"priority" validate:"omitempty,priority"`
	DueDate      *time.Time          `json:"dueDate"`
	TagIDs       []uint              `json:"tagIds" validate:"omitempty,dive,gt=0"`
}

type ListTasksInput struct {
	ProjectID    *uint             `form:"projectId" json:"projectId" validate:"omitempty,gt=0"`
	Status       *model.TaskStatus `form:"status" json:"status" validate:"omitempty,status"`
	AssignedToMe bool              `form:"assignedToMe" json:"assignedToMe"`
}

// UpdateTaskInput changes only the non-nil fields. TagIDs, when present,
// replaces the whole tag set.
type UpdateTaskInput struct {
	Title        *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string             `json:"description"`
	Status       *model.TaskStatus   `json:"status" validate:"omitempty,status"`
	Priority     *model.TaskPriority `json:"priority" validate:"omitempty,priority"`
	AssignedToID *uint               `json:"assignedToId" validate:"omitempty,gt=0"`
	DueDate      *time.Time          `json:"dueDate"`
	TagIDs       *[]uint             `json:"tagIds" validate:"omitempty,dive,gt=0"`
}

type AddCommentInput struct {
	Content string `json:"content" validate:"required,min=1"`
}

type StatsInput struct {
	ProjectID *uint `form:"projectId" json:"projectId" validate:"omitempty,gt=0"`
}

type TaskStats struct {
	TotalTasks      int64 `json:"totalTasks"`
	TodoTasks       int64 `json:"todoTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	InReviewTasks   int64 `json:"inReviewTasks"`
	DoneTasks       int64 `json:"doneTasks"`
	MyTasks         int64 `json:"myTasks"`
	OverdueTasks    int64 `json:"overdueTasks"`
}

// Create inserts the task and its tag links. The caller must be a member of
// the project, and so must the assignee.
func (s *TaskService) Create(ctx context.Context, userID uint, in CreateTaskInput) (*model.Task, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	priority := model.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	var task model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := s.authz.With(tx)
		if _, err := a.Authorize(ctx, userID, in.ProjectID, authz.ActionCreateTask); err != nil {
			return err
		}
		if in.AssignedToID != nil {
			if err := requireAssignee(ctx, a, *in.AssignedToID, in.ProjectID); err != nil {
				return err
			}
		}
		tagIDs, err := existingTags(tx, in.TagIDs)
		if err != nil {
			return err
		}

		task = model.Task{
			Title:        in.Title,
			Description:  in.Description,
			Status:       model.StatusTodo,
			Priority:     priority,
			ProjectID:    in.ProjectID,
			CreatedByID:  userID,
			AssignedToID: in.AssignedToID,
			DueDate:      utc(in.DueDate),
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if err := linkTags(tx, task.ID, tagIDs); err != nil {
			return err
		}
		return loadTask(tx, &task, task.ID)
	})
	if err != nil {
		return nil, err
	}
	logutils.Log.WithFields(logutils.Fields{"task": task.ID, "project": task.ProjectID, "user": userID}).Info("task created")
	return &task, nil
}

// List returns the tasks of every project the caller belongs to, narrowed by
// the filters. Naming a project the caller is not a member of fails as not
// found.
func (s *TaskService) List(ctx context.Context, userID uint, in ListTasksInput) ([]model.Task, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	q := db.Model(&model.Task{})
	if in.ProjectID != nil {
		if _, err := s.authz.Authorize(ctx, userID, *in.ProjectID, authz.ActionViewProject); err != nil {
			return nil, err
		}
		q = q.Where("project_id = ?", *in.ProjectID)
	} else {
		q = q.Where("project_id IN (?)", memberProjects(db, userID))
	}
	if in.Status != nil {
		q = q.Where("status = ?", *in.Status)
	}
	if in.AssignedToMe {
		q = q.Where("assigned_to_id = ?", userID)
	}

	var tasks []model.Task
	err := withTaskDetail(q).
		Scopes(listOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if err := s.countComments(db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// listOrder: status ascending, priority descending, due date ascending with
// undated tasks last, then newest first. id breaks the remaining ties.
func listOrder(db *gorm.DB) *gorm.DB {
	return db.
		Order("status ASC").
		Order("priority DESC").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END ASC").
		Order("due_date ASC").
		Order("created_at DESC").
		Order("id DESC")
}

func (s *TaskService) countComments(db *gorm.DB, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uint, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	var counts []struct {
		TaskID uint
		N      int64
	}
	err := db.Model(&model.TaskComment{}).
		Select("task_id, COUNT(*) AS n").
		Where("task_id IN ?", ids).
		Group("task_id").
		Scan(&counts).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	byTask := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byTask[c.TaskID] = c.N
	}
	for i := range tasks {
		tasks[i].CommentCount = byTask[tasks[i].ID]
	}
	return nil
}

// Get returns the task with its comments, oldest first.
func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	if _, _, err := s.authz.VisibleTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	var task model.Task
	err := withTaskDetail(s.db.WithContext(ctx)).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		Preload("Comments.Author", userSummary).
		Take(&task, taskID).Error
	if err != nil {
		return nil, notFoundOr(err, "task")
	}
	task.CommentCount = int64(len(task.Comments))
	return &task, nil
}

// Update applies a partial change. Allowed for the creator, the assignee and
// project OWNER/ADMIN.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, in UpdateTaskInput) (*model.Task, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var task model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := s.authz.With(tx)
		current, m, err := a.VisibleTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if !authz.CanModifyTask(userID, current, m) {
			return errs.InsufficientPermissions("insufficient permissions to update this task")
		}
		if in.AssignedToID != nil {
			if err := requireAssignee(ctx, a, *in.AssignedToID, current.ProjectID); err != nil {
				return err
			}
		}

		updates := map[string]any{"updated_at": s.clock()}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Status != nil {
			updates["status"] = *in.Status
		}
		if in.Priority != nil {
			updates["priority"] = *in.Priority
		}
		if in.AssignedToID != nil {
			updates["assigned_to_id"] = *in.AssignedToID
		}
		if in.DueDate != nil {
			updates["due_date"] = in.DueDate.UTC()
		}
		if in.TagIDs != nil {
			tagIDs, err := existingTags(tx, *in.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskTag{}).Error; err != nil {
				return fmt.Errorf("clear task tags: %w", err)
			}
			if err := linkTags(tx, taskID, tagIDs); err != nil {
				return err
			}
		}
		if err := tx.Model(current).Updates(updates).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return loadTask(tx, &task, taskID)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the task with its comments and tag links. Allowed for the
// creator and project OWNER/ADMIN; being the assignee is not enough.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, m, err := s.authz.With(tx).VisibleTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if !authz.CanDeleteTask(userID, task, m) {
			return errs.InsufficientPermissions("insufficient permissions to delete this task")
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskTag{}).Error; err != nil {
			return fmt.Errorf("delete task tags: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskComment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Delete(task).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		logutils.Log.WithFields(logutils.Fields{"task": taskID, "user": userID}).Info("task deleted")
		return nil
	})
}

// AddComment appends a comment on a task the caller can see.
func (s *TaskService) AddComment(ctx context.Context, userID, taskID uint, in AddCommentInput) (*model.TaskComment, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var comment model.TaskComment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, _, err := s.authz.With(tx).VisibleTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if _, err := s.authz.With(tx).Authorize(ctx, userID, task.ProjectID, authz.ActionAddComment); err != nil {
			return err
		}
		comment = model.TaskComment{Content: in.Content, TaskID: taskID, AuthorID: userID}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return tx.Preload("Author", userSummary).Take(&comment, comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Stats counts the caller's visible tasks, optionally narrowed to one
// project. A project the caller is not a member of contributes nothing.
func (s *TaskService) Stats(ctx context.Context, userID uint, in StatsInput) (*TaskStats, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	scope := func(ctx context.Context) *gorm.DB {
		db := s.db.WithContext(ctx)
		q := db.Model(&model.Task{}).Where("project_id IN (?)", memberProjects(db, userID))
		if in.ProjectID != nil {
			q = q.Where("project_id = ?", *in.ProjectID)
		}
		return q
	}

	var stats TaskStats
	counts := []struct {
		dst    *int64
		filter func(*gorm.DB) *gorm.DB
	}{
		{&stats.TotalTasks, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.TodoTasks, withStatus(model.StatusTodo)},
		{&stats.InProgressTasks, withStatus(model.StatusInProgress)},
		{&stats.InReviewTasks, withStatus(model.StatusInReview)},
		{&stats.DoneTasks, withStatus(model.StatusDone)},
		{&stats.MyTasks, func(q *gorm.DB) *gorm.DB { return q.Where("assigned_to_id = ?", userID) }},
		{&stats.OverdueTasks, func(q *gorm.DB) *gorm.DB {
			return q.Where("due_date < ? AND status <> ?", now, model.StatusDone)
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			return c.filter(scope(gctx)).Count(c.dst).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	return &stats, nil
}

func withStatus(status model.TaskStatus) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", status) }
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *TaskService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func memberProjects(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.ProjectMembership{}).Select("project_id").Where("user_id = ?", userID)
}

// withTaskDetail preloads what a task is shown with: creator, assignee,
// project summary and tags.
func withTaskDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("CreatedBy", userSummary).
		Preload("AssignedTo", userSummary).
		Preload("Project", projectSummary).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag_id") }).
		Preload("Tags.Tag")
}

func loadTask(tx *gorm.DB, dst *model.Task, taskID uint) error {
	if err := withTaskDetail(tx).Take(dst, taskID).Error; err != nil {
		return notFoundOr(err, "task")
	}
	return nil
}

func requireAssignee(ctx context.Context, a *authz.Authorizer, assigneeID, projectID uint) error {
	m, err := a.MembershipOf(ctx, assigneeID, projectID)
	if err != nil {
		return err
	}
	if m == nil {
		return errs.ErrAssigneeNotMember
	}
	return nil
}

// existingTags deduplicates ids and fails when any of them is not a tag.
func existingTags(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	var n int64
	if err := tx.Model(&model.Tag{}).Where("id IN ?", unique).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check tags: %w", err)
	}
	if n != int64(len(unique)) {
		return nil, errs.Validation("unknown tag in tagIds")
	}
	return unique, nil
}

func linkTags(tx *gorm.DB, taskID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]model.TaskTag, len(tagIDs))
	for i, id := range tagIDs {
		links[i] = model.TaskTag{TaskID: taskID, TagID: id}
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	return nil
}
