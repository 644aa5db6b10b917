package model

import "time"

// Post is a blog article.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Excerpt     string    `json:"excerpt" gorm:"type:text;not null"`
	ImageURL    *string   `json:"imageUrl" gorm:"type:text"`
	PublishedAt time.Time `json:"publishedAt" gorm:"not null;index"`
	CategoryID  *uint     `json:"categoryId" gorm:"index"`
	AuthorID    uint      `json:"authorId" gorm:"not null;index"`
	Featured    bool      `json:"featured" gorm:"default:false;not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// PostWithDetails is a post joined with its category and author for direct rendering.
type PostWithDetails struct {
	Post
	CategoryName string `json:"categoryName"`
	CategorySlug string `json:"categorySlug"`
	AuthorName   string `json:"authorName"`
	ReadingTime  string `json:"readingTime"`
}

// PostInput is the write payload for creating or partially updating a post.
//
// PublishedAt, CategoryID and Featured arrive loosely typed from clients
// (date strings, numeric strings, "true"/"false") and are normalized by the
// store on every write path. A nil field means "not supplied".
type PostInput struct {
	Title       *string
	Slug        *string
	Content     *string
	Excerpt     *string
	ImageURL    *string
	PublishedAt any
	CategoryID  any
	AuthorID    *uint
	Featured    any
}
