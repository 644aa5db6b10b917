package model

import "time"

// User represents an account that can sign in to the admin area.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Password    string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	DisplayName string    `json:"displayName" gorm:"size:255"`
	IsAdmin     bool      `json:"isAdmin" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
}

// NewUser carries the fields needed to create a user.
// Password must already be hashed.
type NewUser struct {
	Username    string
	Password    string
	DisplayName string
	IsAdmin     bool
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Username    *string
	Password    *string
	DisplayName *string
	IsAdmin     *bool
}
