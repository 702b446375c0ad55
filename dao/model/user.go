package model

import (
	"time"

	"gorm.io/datatypes"
)

const InvalidUserID = 0

// BaseModel replaces gorm.Model: rows are hard-deleted, so there is no
// DeletedAt column.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Optional profile fields for user
type UserAttribute struct {
	Bio        *string `json:"bio,omitempty"`        // free text
	Title      *string `json:"title,omitempty"`      // job title, e.g. "Staff Engineer"
	Department *string `json:"department,omitempty"` // org unit
}

// User is the basic entity of the system
type User struct {
	BaseModel
	Name  string  `gorm:"type:varchar(128);not null" json:"name"`
	Email string  `gorm:"uniqueIndex;type:varchar(256);not null" json:"email"`
	Image *string `gorm:"type:varchar(512)" json:"image,omitempty"`

	Attributes datatypes.JSONType[UserAttribute] `json:"-"`

	Credential *UserCredential `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserCredential keeps the password hash away from profile data.
type UserCredential struct {
	BaseModel
	UserID       uint   `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(256);not null"`
}

// UserSummaryColumns is the column set loaded when a user is embedded in
// another entity.
var UserSummaryColumns = []string{"id", "name", "email", "image", "created_at", "updated_at"}
