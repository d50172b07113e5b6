package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"debate-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitingDebateTTL is how long a waiting debate may sit without an opponent
// before the sweeper cancels it.
const WaitingDebateTTL = 7 * 24 * time.Hour

// SweepReport summarizes one sweep pass. Errors are keyed by debate ID — one
// failing debate never aborts the sweep of the rest.
type SweepReport struct {
	CancelledWaiting int               `json:"cancelled_waiting"`
	Advanced         int               `json:"advanced"`
	Completed        int               `json:"completed"`
	Errors           map[string]string `json:"errors,omitempty"`
}

// SweeperService forces the same round decisions the submission path makes,
// for debates whose participants went silent past the deadline. It holds no
// state of its own: correctness under concurrent sweeps (or a sweep racing a
// live submission) comes from the guarded updates in ApplyDecision, not from
// mutual exclusion.
type SweeperService struct {
	DB      *gorm.DB
	Debates *DebateService
}

func NewSweeperService(db *gorm.DB, debates *DebateService) *SweeperService {
	return &SweeperService{DB: db, Debates: debates}
}

// Sweep runs one full pass: cancel stale waiting debates, then resolve every
// active debate whose round deadline has passed.
func (s *SweeperService) Sweep(now time.Time) SweepReport {
	report := SweepReport{Errors: map[string]string{}}

	report.CancelledWaiting = s.cancelStaleWaiting(now)

	var expired []models.Debate
	if err := s.DB.
		Where("status = ? AND round_deadline IS NOT NULL AND round_deadline <= ?", models.DebateStatusActive, now).
		Find(&expired).Error; err != nil {
		log.Printf("❌ [SWEEP] Failed to fetch expired debates: %v", err)
		report.Errors["_query"] = err.Error()
		return report
	}

	for i := range expired {
		debate := expired[i]
		decision, err := s.resolveExpired(&debate, now)
		if err != nil {
			log.Printf("❌ [SWEEP] Debate %s: %v", debate.ID, err)
			report.Errors[debate.ID] = err.Error()
			continue
		}
		switch decision {
		case DecisionAdvance:
			report.Advanced++
		case DecisionComplete:
			report.Completed++
		}
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report
}

// cancelStaleWaiting sweeps two kinds of waiting debates to cancelled:
// those idle past the TTL, and — defensively — those that somehow acquired an
// opponent without ever activating (a state the join path cannot produce;
// repairing it here keeps the active-iff-deadline invariant honest).
func (s *SweeperService) cancelStaleWaiting(now time.Time) int {
	cutoff := now.Add(-WaitingDebateTTL)
	cancelled := 0

	result := s.DB.Model(&models.Debate{}).
		Where("status = ? AND created_at <= ?", models.DebateStatusWaiting, cutoff).
		Update("status", models.DebateStatusCancelled)
	if result.Error != nil {
		log.Printf("❌ [SWEEP] Failed to cancel stale waiting debates: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("🧹 [SWEEP] Cancelled %d stale waiting debate(s)", result.RowsAffected)
		cancelled += int(result.RowsAffected)
	}

	repair := s.DB.Model(&models.Debate{}).
		Where("status = ? AND opponent_id IS NOT NULL", models.DebateStatusWaiting).
		Update("status", models.DebateStatusCancelled)
	if repair.Error != nil {
		log.Printf("❌ [SWEEP] Waiting-with-opponent repair failed: %v", repair.Error)
	} else if repair.RowsAffected > 0 {
		log.Printf("🧹 [SWEEP] Repaired %d waiting debate(s) that already had an opponent", repair.RowsAffected)
		cancelled += int(repair.RowsAffected)
	}

	return cancelled
}

// resolveExpired handles one overdue debate: classify who submitted, inject
// placeholders for the silent, then run the shared decision logic with
// deadlineForced set (unless everyone actually submitted, which is the
// missed-synchronous-transition safety net).
func (s *SweeperService) resolveExpired(debate *models.Debate, now time.Time) (RoundDecision, error) {
	pset, err := ParticipantSetFor(s.DB, debate)
	if err != nil {
		return DecisionWait, err
	}
	expected := pset.ExpectedAuthors()
	if len(expected) == 0 {
		return DecisionWait, fmt.Errorf("active debate %s has no expected participants", debate.ID)
	}

	submitted, err := s.Debates.submittedAuthors(debate.ID, debate.CurrentRound)
	if err != nil {
		return DecisionWait, err
	}

	if ShouldSkipFreshRound(len(submitted), debate.UpdatedAt, debate.RoundDuration(), now) {
		// The stored deadline predates the round's activation (stale read
		// during a racing activation); leave it for the next pass.
		log.Printf("⏭️ [SWEEP] Debate %s round %d looks freshly activated, skipping", debate.ID, debate.CurrentRound)
		return DecisionWait, nil
	}

	missing := MissingAuthors(expected, submitted)
	roundComplete := len(missing) == 0
	deadlineForced := true

	if roundComplete {
		// Everyone submitted but the transition never applied — the
		// synchronous path must have died between write and update. Re-run
		// the same decision it would have made.
		deadlineForced = false
		log.Printf("🩹 [SWEEP] Debate %s round %d fully submitted but untransitioned, replaying", debate.ID, debate.CurrentRound)
	} else {
		if err := s.injectPlaceholders(debate, missing); err != nil {
			return DecisionWait, err
		}
		s.notifyMissed(debate, expected, missing)
		roundComplete = true // placeholders filled the gaps
	}

	decision := DecideRound(debate.CurrentRound, debate.TotalRounds, roundComplete, deadlineForced)
	applied, err := s.Debates.ApplyDecision(debate, decision, now)
	if err != nil {
		return DecisionWait, err
	}
	if !applied {
		// A submission (or another sweep) already transitioned this round.
		return DecisionWait, nil
	}

	s.Debates.AnnounceTransition(debate, decision, "")
	return decision, nil
}

// injectPlaceholders records a missed-submission statement for every silent
// author, preserving the one-statement-per-author-per-round invariant. A
// duplicate-key failure means the author submitted between our read and this
// write — that statement wins and the placeholder is dropped.
func (s *SweeperService) injectPlaceholders(debate *models.Debate, missing []string) error {
	for _, authorID := range missing {
		placeholder := &models.Statement{
			ID:            uuid.NewString(),
			DebateID:      debate.ID,
			AuthorID:      authorID,
			Round:         debate.CurrentRound,
			Content:       models.PlaceholderContent,
			IsPlaceholder: true,
		}
		if err := s.DB.Create(placeholder).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("ℹ️ [SWEEP] Author %s submitted during sweep of debate %s, keeping their statement", authorID, debate.ID)
				continue
			}
			return fmt.Errorf("failed to create placeholder for %s: %w", authorID, err)
		}
	}
	return nil
}

// notifyMissed tells the silent authors what happened: if someone else
// submitted, the silent ones forfeited the round; if everyone was silent, the
// round is tied and all participants hear about it.
func (s *SweeperService) notifyMissed(debate *models.Debate, expected, missing []string) {
	nobodySubmitted := len(missing) == len(expected)
	if nobodySubmitted {
		title := fmt.Sprintf("Round %d tied", debate.CurrentRound)
		message := fmt.Sprintf("Nobody submitted in \"%s\" before the deadline — the round is recorded as tied.", debate.Topic)
		for _, userID := range expected {
			if err := s.Debates.Notifier.NotifyParticipant(userID, NotifyTypeRoundTied, title, message); err != nil {
				log.Printf("⚠️ [SWEEP] Tie notification (debate %s): %v", debate.ID, err)
			}
		}
		return
	}
	title := fmt.Sprintf("Round %d missed", debate.CurrentRound)
	message := fmt.Sprintf("Time expired before you submitted in \"%s\" — the round goes against you.", debate.Topic)
	for _, userID := range missing {
		if err := s.Debates.Notifier.NotifyParticipant(userID, NotifyTypeRoundLost, title, message); err != nil {
			log.Printf("⚠️ [SWEEP] Miss notification (debate %s): %v", debate.ID, err)
		}
	}
}

// ShouldSkipFreshRound guards against sweeping a round that only looks
// overdue: zero statements and a deadline recomputed from the debate's last
// update still in the future means the stored deadline is stale relative to a
// racing activation or advance.
func ShouldSkipFreshRound(statementCount int, lastUpdate time.Time, roundDuration time.Duration, now time.Time) bool {
	return statementCount == 0 && lastUpdate.Add(roundDuration).After(now)
}
