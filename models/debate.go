package models

import (
	"time"
)

// Debate status lifecycle:
// waiting → active → completed → verdict_ready
// waiting → cancelled (stale or invariant repair, via sweeper)
const (
	DebateStatusWaiting      = "waiting"
	DebateStatusActive       = "active"
	DebateStatusCompleted    = "completed"
	DebateStatusVerdictReady = "verdict_ready"
	DebateStatusCancelled    = "cancelled"
)

const (
	ChallengeTypeOneOnOne = "one_on_one"
	ChallengeTypeGroup    = "group"
)

const (
	ParticipantStatusActive     = "active"
	ParticipantStatusEliminated = "eliminated"
)

// Debate is the unit of contention for round transitions. RoundDeadline is
// non-nil iff Status is active; it is cleared in the same update that marks
// the debate completed. VerdictRequested is written inside that same guarded
// update so that only one caller ever triggers verdict generation.
type Debate struct {
	ID            string `json:"id" gorm:"primaryKey"`
	Topic         string `json:"topic" gorm:"not null"`
	Status        string `json:"status" gorm:"default:'waiting';index"`
	ChallengeType string `json:"challenge_type" gorm:"type:varchar(16);default:'one_on_one'"`

	ChallengerID string  `json:"challenger_id" gorm:"not null;index"`
	OpponentID   *string `json:"opponent_id,omitempty" gorm:"index"` // one_on_one only; nil until joined

	CurrentRound      int        `json:"current_round" gorm:"default:1"`
	TotalRounds       int        `json:"total_rounds" gorm:"not null"`
	RoundDurationMins int        `json:"round_duration_mins" gorm:"not null"`
	RoundDeadline     *time.Time `json:"round_deadline,omitempty" gorm:"index"`

	VerdictRequested bool `json:"verdict_requested" gorm:"default:false"`

	// King-of-the-Hill hand-off: set when the debate belongs to a tournament
	// match; completion takes the tournament-aware verdict path.
	TournamentID    *string `json:"tournament_id,omitempty" gorm:"index"`
	TournamentRound int     `json:"tournament_round,omitempty" gorm:"default:0"`

	// Relationships
	Participants []DebateParticipant `json:"participants,omitempty" gorm:"foreignKey:DebateID"`
	Statements   []Statement         `json:"statements,omitempty" gorm:"foreignKey:DebateID"`

	Timestamps
}

// RoundDuration converts the stored minutes into a duration.
func (d *Debate) RoundDuration() time.Duration {
	return time.Duration(d.RoundDurationMins) * time.Minute
}

// DebateParticipant is a group-mode roster row. One-on-one debates keep their
// two parties on the Debate record itself.
type DebateParticipant struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	DebateID     string     `json:"debate_id" gorm:"not null;index;uniqueIndex:idx_debate_participant"`
	UserID       string     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_debate_participant"`
	Status       string     `json:"status" gorm:"type:varchar(16);default:'active'"`
	JoinedAt     time.Time  `json:"joined_at" gorm:"autoCreateTime"`
	EliminatedAt *time.Time `json:"eliminated_at,omitempty"`
}
