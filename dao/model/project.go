package model

// Project groups tasks and the users allowed to see them.
type Project struct {
	BaseModel
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Color       *string `gorm:"type:varchar(32)" json:"color"`
	CreatedByID uint    `gorm:"not null;index" json:"createdById"`

	CreatedBy *User               `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Members   []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members,omitempty"`
	Tasks     []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tasks,omitempty"`

	TaskCount int64 `gorm:"-" json:"taskCount"`
}

// ProjectMembership links a user to a project. A project has exactly one
// RoleOwner row, written in the same transaction as the project.
type ProjectMembership struct {
	BaseModel
	UserID    uint `gorm:"not null;uniqueIndex:idx_membership_user_project" json:"userId"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_membership_user_project;index" json:"projectId"`
	Role      Role `gorm:"not null" json:"role"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}
