package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecideRound(t *testing.T) {
	tests := []struct {
		name           string
		currentRound   int
		totalRounds    int
		roundComplete  bool
		deadlineForced bool
		want           RoundDecision
	}{
		{
			name:         "incomplete round without deadline waits",
			currentRound: 1, totalRounds: 5,
			roundComplete: false, deadlineForced: false,
			want: DecisionWait,
		},
		{
			name:         "complete early round advances",
			currentRound: 1, totalRounds: 5,
			roundComplete: true,
			want:          DecisionAdvance,
		},
		{
			name:         "forced early round advances",
			currentRound: 1, totalRounds: 4,
			roundComplete: false, deadlineForced: true,
			want: DecisionAdvance,
		},
		{
			name:         "forced halfway round completes",
			currentRound: 2, totalRounds: 4,
			roundComplete: false, deadlineForced: true,
			want: DecisionComplete,
		},
		{
			name:         "complete halfway round completes",
			currentRound: 3, totalRounds: 5,
			roundComplete: true,
			want:          DecisionComplete,
		},
		{
			name:         "final round completes",
			currentRound: 3, totalRounds: 3,
			roundComplete: true,
			want:          DecisionComplete,
		},
		{
			name:         "forced final round completes",
			currentRound: 4, totalRounds: 4,
			roundComplete: false, deadlineForced: true,
			want: DecisionComplete,
		},
		{
			name:         "single round debate completes immediately",
			currentRound: 1, totalRounds: 1,
			roundComplete: true,
			want:          DecisionComplete,
		},
		{
			name:         "incomplete final round without deadline still waits",
			currentRound: 3, totalRounds: 3,
			roundComplete: false, deadlineForced: false,
			want: DecisionWait,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideRound(tt.currentRound, tt.totalRounds, tt.roundComplete, tt.deadlineForced)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHalfwayRound(t *testing.T) {
	tests := []struct {
		totalRounds int
		want        int
	}{
		{totalRounds: 1, want: 1},
		{totalRounds: 2, want: 1},
		{totalRounds: 3, want: 2},
		{totalRounds: 4, want: 2},
		{totalRounds: 5, want: 3},
		{totalRounds: 7, want: 4},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, HalfwayRound(tt.totalRounds), "totalRounds=%d", tt.totalRounds)
	}
}

func TestIsRoundComplete(t *testing.T) {
	tests := []struct {
		name      string
		expected  []string
		submitted []string
		want      bool
	}{
		{
			name:     "both submitted",
			expected: []string{"alice", "bob"}, submitted: []string{"bob", "alice"},
			want: true,
		},
		{
			name:     "one missing",
			expected: []string{"alice", "bob"}, submitted: []string{"alice"},
			want: false,
		},
		{
			name:     "nobody submitted",
			expected: []string{"alice", "bob"}, submitted: nil,
			want: false,
		},
		{
			name:     "empty expected set is never complete",
			expected: nil, submitted: []string{"alice"},
			want: false,
		},
		{
			name:     "extra submissions do not matter",
			expected: []string{"alice"}, submitted: []string{"alice", "ghost"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRoundComplete(tt.expected, tt.submitted))
		})
	}
}

func TestMissingAuthors(t *testing.T) {
	tests := []struct {
		name      string
		expected  []string
		submitted []string
		want      []string
	}{
		{
			name:     "one of two missing",
			expected: []string{"alice", "bob"}, submitted: []string{"alice"},
			want: []string{"bob"},
		},
		{
			name:     "all missing",
			expected: []string{"alice", "bob", "carol"}, submitted: nil,
			want: []string{"alice", "bob", "carol"},
		},
		{
			name:     "none missing",
			expected: []string{"alice", "bob"}, submitted: []string{"bob", "alice"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MissingAuthors(tt.expected, tt.submitted))
		})
	}
}
