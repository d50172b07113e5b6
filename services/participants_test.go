package services

import (
	"testing"
	"time"

	"debate-arena-system/models"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPairSet(t *testing.T) {
	t.Run("challenger only before join", func(t *testing.T) {
		set := PairSet{ChallengerID: "alice"}
		require.Equal(t, []string{"alice"}, set.ExpectedAuthors())
		require.True(t, set.Contains("alice"))
		require.False(t, set.Contains("bob"))
	})

	t.Run("both parties after join", func(t *testing.T) {
		set := PairSet{ChallengerID: "alice", OpponentID: strPtr("bob")}
		require.Equal(t, []string{"alice", "bob"}, set.ExpectedAuthors())
		require.True(t, set.Contains("alice"))
		require.True(t, set.Contains("bob"))
		require.False(t, set.Contains("carol"))
	})
}

func TestRosterSet(t *testing.T) {
	now := time.Now()
	roster := []models.DebateParticipant{
		{UserID: "alice", Status: models.ParticipantStatusActive},
		{UserID: "bob", Status: models.ParticipantStatusActive},
		{UserID: "carol", Status: models.ParticipantStatusActive},
		{UserID: "dave", Status: models.ParticipantStatusActive},
	}

	set := NewRosterSet(roster)
	require.Equal(t, []string{"alice", "bob", "carol", "dave"}, set.ExpectedAuthors())

	// Elimination mid-round shrinks the expected set on the next evaluation.
	roster[2].Status = models.ParticipantStatusEliminated
	roster[2].EliminatedAt = &now
	set = NewRosterSet(roster)

	require.Equal(t, []string{"alice", "bob", "dave"}, set.ExpectedAuthors())
	require.False(t, set.Contains("carol"))
	require.True(t, set.Contains("dave"))

	// Round completion now only needs the three remaining active participants.
	require.True(t, IsRoundComplete(set.ExpectedAuthors(), []string{"alice", "bob", "dave"}))
	require.False(t, IsRoundComplete(set.ExpectedAuthors(), []string{"alice", "bob", "carol"}))
}

func TestRosterSetEmpty(t *testing.T) {
	set := NewRosterSet(nil)
	require.Empty(t, set.ExpectedAuthors())
	require.False(t, set.Contains("anyone"))
	require.False(t, IsRoundComplete(set.ExpectedAuthors(), nil))
}
