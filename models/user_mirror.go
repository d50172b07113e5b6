package models

import (
	"time"

	"gorm.io/gorm"
)

// UserMirror is a local snapshot of profile-service users, populated by the
// profile sync worker. Owned solely by the debate service; used for display
// names in notification copy so we never call the profile service on the
// submission path.
type UserMirror struct {
	ID                string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string     `gorm:"index;not null" json:"username"`
	DisplayName       *string    `json:"display_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	EloRating         int        `json:"elo_rating" gorm:"default:1200"`
	IsBanned          bool       `json:"is_banned" gorm:"default:false"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Name returns the best label we have for a user.
func (u *UserMirror) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}
