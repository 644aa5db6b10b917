package model

import "time"

// SiteSettingsID is the primary key of the single settings row.
const SiteSettingsID uint = 1

// SiteSettings holds site-wide values. Exactly one record exists.
type SiteSettings struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Tagline   string    `json:"tagline" gorm:"size:255;not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TableName pins the table name for the singleton.
func (SiteSettings) TableName() string {
	return "site_settings"
}

// SiteSettingsPatch is a partial settings update.
type SiteSettingsPatch struct {
	Tagline *string
}
