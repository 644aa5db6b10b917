package model

import "time"

// Category groups posts on the public site.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
}

// NewCategory carries the fields needed to create a category.
type NewCategory struct {
	Name        string
	Slug        string
	Description *string
}
