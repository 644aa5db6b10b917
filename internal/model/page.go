package model

import "time"

// PageContent is an editable static page keyed by a string id such as "about".
type PageContent struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (PageContent) TableName() string {
	return "page_contents"
}

// PageContentPatch is a partial page update.
type PageContentPatch struct {
	Title   *string
	Content *string
}
