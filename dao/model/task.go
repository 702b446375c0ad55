package model

import "time"

type Task struct {
	BaseModel
	Title        string       `gorm:"type:varchar(200);not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	Status       TaskStatus   `gorm:"not null;default:1;index" json:"status"`
	Priority     TaskPriority `gorm:"not null;default:2" json:"priority"`
	ProjectID    uint         `gorm:"not null;index" json:"projectId"`
	CreatedByID  uint         `gorm:"not null;index" json:"createdById"`
	AssignedToID *uint        `gorm:"index" json:"assignedToId"`
	DueDate      *time.Time   `gorm:"index" json:"dueDate"`

	Project    *Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy  *User         `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	AssignedTo *User         `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	Tags       []TaskTag     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Comments   []TaskComment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`

	CommentCount int64 `gorm:"-" json:"commentCount"`
}

// IsOverdue reports whether the task is past due and not finished.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// TaskComment is append-only.
type TaskComment struct {
	BaseModel
	Content  string `gorm:"type:text;not null" json:"content"`
	TaskID   uint   `gorm:"not null;index" json:"taskId"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Tag is global, shared by the tasks of every project.
type Tag struct {
	BaseModel
	Name  string `gorm:"type:varchar(50);not null" json:"name"`
	Color string `gorm:"type:varchar(32);not null" json:"color"`
}

type TaskTag struct {
	TaskID uint `gorm:"primaryKey" json:"taskId"`
	TagID  uint `gorm:"primaryKey;index" json:"tagId"`

	Tag *Tag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}

// AllModels is the migration order for the schema.
func AllModels() []any {
	return []any{
		&User{},
		&UserCredential{},
		&Project{},
		&ProjectMembership{},
		&Tag{},
		&Task{},
		&TaskTag{},
		&TaskComment{},
	}
}
