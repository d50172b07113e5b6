package models

import "time"

// DebateWatcher subscribes a user to turn-change / round / completion
// notifications for a debate without being a participant.
type DebateWatcher struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	DebateID  string    `json:"debate_id" gorm:"not null;index;uniqueIndex:idx_debate_watcher"`
	UserID    string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_debate_watcher"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
