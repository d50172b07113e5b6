package services

// RoundDecision is the outcome of evaluating a round: do nothing yet, move to
// the next round, or end the debate.
type RoundDecision string

const (
	DecisionWait     RoundDecision = "wait"
	DecisionAdvance  RoundDecision = "advance"
	DecisionComplete RoundDecision = "complete"
)

// HalfwayRound returns the earliest round at which a deadline-forced or
// completed evaluation may end the debate: ceil(totalRounds / 2).
func HalfwayRound(totalRounds int) int {
	return (totalRounds + 1) / 2
}

// DecideRound is the single transition rule shared by the submission path and
// the expiration sweeper. It is pure: both callers feed it the same inputs and
// therefore cannot disagree on the outcome.
//
// If the round is incomplete and the deadline has not forced the issue, the
// debate simply waits for the remaining participants. Otherwise the
// halfway-or-final policy applies: once at least half of the planned rounds
// have elapsed (or the final round is done), the debate completes even with
// missing arguments — downstream judging evaluates whatever exists. Before the
// halfway point the debate advances to the next round.
func DecideRound(currentRound, totalRounds int, roundComplete, deadlineForced bool) RoundDecision {
	if !roundComplete && !deadlineForced {
		return DecisionWait
	}
	isFinal := currentRound >= totalRounds
	isHalfway := currentRound >= HalfwayRound(totalRounds)
	if isFinal || isHalfway {
		return DecisionComplete
	}
	return DecisionAdvance
}

// IsRoundComplete reports whether every expected author has submitted.
// An empty expected set is never complete — a debate with nobody expected to
// speak must not transition on the strength of zero statements.
func IsRoundComplete(expectedAuthors, submittedAuthors []string) bool {
	if len(expectedAuthors) == 0 {
		return false
	}
	submitted := make(map[string]struct{}, len(submittedAuthors))
	for _, a := range submittedAuthors {
		submitted[a] = struct{}{}
	}
	for _, a := range expectedAuthors {
		if _, ok := submitted[a]; !ok {
			return false
		}
	}
	return true
}

// MissingAuthors returns the expected authors with no statement this round,
// in expected order.
func MissingAuthors(expectedAuthors, submittedAuthors []string) []string {
	submitted := make(map[string]struct{}, len(submittedAuthors))
	for _, a := range submittedAuthors {
		submitted[a] = struct{}{}
	}
	var missing []string
	for _, a := range expectedAuthors {
		if _, ok := submitted[a]; !ok {
			missing = append(missing, a)
		}
	}
	return missing
}
