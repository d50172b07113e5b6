package services

import (
	"fmt"

	"debate-arena-system/models"

	"gorm.io/gorm"
)

// ParticipantSet answers "who is expected to submit this round". The round
// completion check depends only on this interface, so one_on_one and group
// debates share the same evaluation code.
type ParticipantSet interface {
	ExpectedAuthors() []string
	Contains(userID string) bool
}

// PairSet covers one_on_one debates: the challenger plus the opponent once
// one has joined.
type PairSet struct {
	ChallengerID string
	OpponentID   *string
}

func (p PairSet) ExpectedAuthors() []string {
	authors := []string{p.ChallengerID}
	if p.OpponentID != nil && *p.OpponentID != "" {
		authors = append(authors, *p.OpponentID)
	}
	return authors
}

func (p PairSet) Contains(userID string) bool {
	if userID == p.ChallengerID {
		return true
	}
	return p.OpponentID != nil && *p.OpponentID == userID
}

// RosterSet covers group debates: only active participants count. Build it
// from a freshly fetched roster — eliminations can shrink the set between
// evaluations, so callers must not cache it across rounds.
type RosterSet struct {
	participants []models.DebateParticipant
}

func NewRosterSet(participants []models.DebateParticipant) RosterSet {
	return RosterSet{participants: participants}
}

func (r RosterSet) ExpectedAuthors() []string {
	var authors []string
	for _, p := range r.participants {
		if p.Status == models.ParticipantStatusActive {
			authors = append(authors, p.UserID)
		}
	}
	return authors
}

func (r RosterSet) Contains(userID string) bool {
	for _, p := range r.participants {
		if p.UserID == userID && p.Status == models.ParticipantStatusActive {
			return true
		}
	}
	return false
}

// ParticipantSetFor builds the expected-participant set for a debate,
// re-fetching the group roster so the set reflects eliminations as of now.
func ParticipantSetFor(db *gorm.DB, debate *models.Debate) (ParticipantSet, error) {
	switch debate.ChallengeType {
	case models.ChallengeTypeGroup:
		var roster []models.DebateParticipant
		if err := db.Where("debate_id = ?", debate.ID).
			Order("joined_at ASC").
			Find(&roster).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch participants for debate %s: %w", debate.ID, err)
		}
		return NewRosterSet(roster), nil
	default:
		return PairSet{ChallengerID: debate.ChallengerID, OpponentID: debate.OpponentID}, nil
	}
}
