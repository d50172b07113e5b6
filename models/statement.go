package models

import "time"

// PlaceholderContent is written by the sweeper on behalf of a participant who
// let the round deadline pass without submitting.
const PlaceholderContent = "[No submission — Time expired]"

// Statement is one participant's argument for one round. The composite unique
// index is the sole guard against double submission under concurrent requests:
// the second insert for the same (debate, author, round) fails at the storage
// layer and is surfaced as a conflict. Statements are never edited or deleted.
type Statement struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	DebateID      string    `json:"debate_id" gorm:"not null;index;uniqueIndex:idx_statement_debate_author_round"`
	AuthorID      string    `json:"author_id" gorm:"not null;index;uniqueIndex:idx_statement_debate_author_round"`
	Round         int       `json:"round" gorm:"not null;uniqueIndex:idx_statement_debate_author_round"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	IsPlaceholder bool      `json:"is_placeholder" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}
