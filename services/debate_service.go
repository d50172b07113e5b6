package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"debate-arena-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DebateService struct {
	DB       *gorm.DB
	Notifier *NotifierClient
	Verdicts *VerdictClient
}

func NewDebateService(db *gorm.DB, notifier *NotifierClient, verdicts *VerdictClient) *DebateService {
	return &DebateService{DB: db, Notifier: notifier, Verdicts: verdicts}
}

// CreateDebate creates a debate in waiting status. No deadline is set until a
// second party joins and the debate activates.
func (s *DebateService) CreateDebate(c *fiber.Ctx) error {
	type Req struct {
		Topic             string  `json:"topic" validate:"required"`
		ChallengeType     string  `json:"challenge_type"` // one_on_one (default) | group
		TotalRounds       int     `json:"total_rounds" validate:"required"`
		RoundDurationMins int     `json:"round_duration_mins" validate:"required"`
		TournamentID      *string `json:"tournament_id,omitempty"`
		TournamentRound   int     `json:"tournament_round,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return c.Status(400).JSON(fiber.Map{"error": "topic is required"})
	}
	if req.TotalRounds < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "total_rounds must be at least 1"})
	}
	if req.RoundDurationMins < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "round_duration_mins must be at least 1"})
	}

	challengeType := req.ChallengeType
	switch challengeType {
	case "":
		challengeType = models.ChallengeTypeOneOnOne
	case models.ChallengeTypeOneOnOne, models.ChallengeTypeGroup:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "challenge_type must be one_on_one or group"})
	}

	debate := &models.Debate{
		ID:                uuid.NewString(),
		Topic:             req.Topic,
		Status:            models.DebateStatusWaiting,
		ChallengeType:     challengeType,
		ChallengerID:      userID,
		CurrentRound:      1,
		TotalRounds:       req.TotalRounds,
		RoundDurationMins: req.RoundDurationMins,
		TournamentID:      req.TournamentID,
		TournamentRound:   req.TournamentRound,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(debate).Error; err != nil {
			return err
		}
		if challengeType == models.ChallengeTypeGroup {
			// The challenger is on the roster from the start.
			return tx.Create(&models.DebateParticipant{
				ID:       uuid.NewString(),
				DebateID: debate.ID,
				UserID:   userID,
				Status:   models.ParticipantStatusActive,
			}).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR creating debate: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create debate"})
	}
	return c.Status(201).JSON(debate)
}

// JoinDebate activates a waiting debate. One_on_one: the joiner becomes the
// opponent; the update is guarded on opponent_id IS NULL so two simultaneous
// joins cannot both win. Group: the joiner is appended to the roster; the
// first non-challenger join activates the debate.
func (s *DebateService) JoinDebate(c *fiber.Ctx) error {
	debateID := c.Params("id")
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var debate models.Debate
	if err := s.DB.First(&debate, "id = ?", debateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "debate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if userID == debate.ChallengerID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot join your own debate"})
	}

	now := time.Now()
	deadline := now.Add(debate.RoundDuration())

	switch debate.ChallengeType {
	case models.ChallengeTypeOneOnOne:
		if debate.Status != models.DebateStatusWaiting {
			return c.Status(409).JSON(fiber.Map{"error": "debate is not open for joining", "status": debate.Status})
		}
		result := s.DB.Model(&models.Debate{}).
			Where("id = ? AND status = ? AND opponent_id IS NULL", debateID, models.DebateStatusWaiting).
			Updates(map[string]interface{}{
				"opponent_id":    userID,
				"status":         models.DebateStatusActive,
				"round_deadline": deadline,
			})
		if result.Error != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to join debate"})
		}
		if result.RowsAffected == 0 {
			return c.Status(409).JSON(fiber.Map{"error": "debate was already joined"})
		}
	case models.ChallengeTypeGroup:
		if debate.Status != models.DebateStatusWaiting && debate.Status != models.DebateStatusActive {
			return c.Status(409).JSON(fiber.Map{"error": "debate is not open for joining", "status": debate.Status})
		}
		participant := &models.DebateParticipant{
			ID:       uuid.NewString(),
			DebateID: debateID,
			UserID:   userID,
			Status:   models.ParticipantStatusActive,
		}
		if err := s.DB.Create(participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(409).JSON(fiber.Map{"error": "already a participant in this debate"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "failed to join debate"})
		}
		// First joiner flips the debate active; later joiners are a no-op here.
		s.DB.Model(&models.Debate{}).
			Where("id = ? AND status = ?", debateID, models.DebateStatusWaiting).
			Updates(map[string]interface{}{
				"status":         models.DebateStatusActive,
				"round_deadline": deadline,
			})
	}

	if err := s.Notifier.NotifyParticipant(
		debate.ChallengerID,
		NotifyTypeYourTurn,
		"Your debate has started",
		fmt.Sprintf("%s joined \"%s\" — round 1 is open.", s.Notifier.DisplayName(userID), debate.Topic),
	); err != nil {
		log.Printf("⚠️ [NOTIFY] Join notification for debate %s: %v", debateID, err)
	}

	s.DB.First(&debate, "id = ?", debateID)
	return c.JSON(debate)
}

// SubmitStatement is the synchronous half of the round state machine: validate
// the caller, persist the statement (the unique index is the double-submission
// guard), then evaluate the round and apply whatever DecideRound says.
func (s *DebateService) SubmitStatement(c *fiber.Ctx) error {
	type Req struct {
		Content string `json:"content" validate:"required"`
		Round   int    `json:"round,omitempty"` // defaults to the debate's current round
	}
	debateID := c.Params("id")
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var debate models.Debate
	if err := s.DB.First(&debate, "id = ?", debateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "debate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if debate.Status != models.DebateStatusActive {
		return c.Status(409).JSON(fiber.Map{"error": "debate is not active", "status": debate.Status})
	}

	pset, err := ParticipantSetFor(s.DB, &debate)
	if err != nil {
		log.Printf("ERROR building participant set for debate %s: %v", debateID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if !pset.Contains(userID) {
		return c.Status(403).JSON(fiber.Map{"error": "you are not a participant in this debate"})
	}

	round := req.Round
	if round == 0 {
		round = debate.CurrentRound
	}
	if round != debate.CurrentRound {
		return c.Status(400).JSON(fiber.Map{
			"error":         "round is no longer accepting submissions",
			"current_round": debate.CurrentRound,
		})
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content cannot be empty"})
	}

	statement := &models.Statement{
		ID:       uuid.NewString(),
		DebateID: debateID,
		AuthorID: userID,
		Round:    round,
		Content:  content,
	}
	if err := s.DB.Create(statement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "you already submitted a statement for this round"})
		}
		log.Printf("ERROR creating statement for debate %s: %v", debateID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save statement"})
	}

	submitted, err := s.submittedAuthors(debateID, round)
	if err != nil {
		// The statement is saved; the sweeper will pick the round up if this
		// evaluation dies here.
		log.Printf("ERROR fetching round statements for debate %s: %v", debateID, err)
		return c.Status(201).JSON(fiber.Map{"statement": statement, "decision": DecisionWait})
	}

	expected := pset.ExpectedAuthors()
	roundComplete := IsRoundComplete(expected, submitted)
	decision := DecideRound(debate.CurrentRound, debate.TotalRounds, roundComplete, false)

	switch decision {
	case DecisionWait:
		for _, missing := range MissingAuthors(expected, submitted) {
			if err := s.Notifier.NotifyParticipant(
				missing,
				NotifyTypeYourTurn,
				"It's your turn",
				fmt.Sprintf("%s submitted in \"%s\" — round %d is waiting on you.", s.Notifier.DisplayName(userID), debate.Topic, round),
			); err != nil {
				log.Printf("⚠️ [NOTIFY] Turn notification for debate %s: %v", debateID, err)
			}
		}
	case DecisionAdvance, DecisionComplete:
		applied, err := s.ApplyDecision(&debate, decision, time.Now())
		if err != nil {
			log.Printf("ERROR applying %s for debate %s: %v", decision, debateID, err)
			return c.Status(201).JSON(fiber.Map{"statement": statement, "decision": DecisionWait})
		}
		if applied {
			s.AnnounceTransition(&debate, decision, userID)
		}
	}

	return c.Status(201).JSON(fiber.Map{"statement": statement, "decision": decision})
}

func (s *DebateService) submittedAuthors(debateID string, round int) ([]string, error) {
	var statements []models.Statement
	if err := s.DB.Where("debate_id = ? AND round = ?", debateID, round).
		Find(&statements).Error; err != nil {
		return nil, err
	}
	authors := make([]string, 0, len(statements))
	for _, st := range statements {
		authors = append(authors, st.AuthorID)
	}
	return authors, nil
}

// ApplyDecision writes an advance or complete transition, guarded on the
// debate's current status and round. RowsAffected == 0 means another caller
// (a concurrent submission or a sweeper pass) already transitioned this round
// — a benign stale read, never an error. Completion sets verdict_requested in
// the same statement, so exactly one caller ever owns the verdict trigger.
func (s *DebateService) ApplyDecision(debate *models.Debate, decision RoundDecision, now time.Time) (bool, error) {
	guard := s.DB.Model(&models.Debate{}).
		Where("id = ? AND status = ? AND current_round = ?",
			debate.ID, models.DebateStatusActive, debate.CurrentRound)

	switch decision {
	case DecisionAdvance:
		newDeadline := now.Add(debate.RoundDuration())
		result := guard.Updates(map[string]interface{}{
			"current_round":  debate.CurrentRound + 1,
			"round_deadline": newDeadline,
		})
		if result.Error != nil {
			return false, fmt.Errorf("failed to advance debate %s: %w", debate.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return false, nil
		}
		debate.CurrentRound++
		debate.RoundDeadline = &newDeadline
		return true, nil
	case DecisionComplete:
		result := guard.Updates(map[string]interface{}{
			"status":            models.DebateStatusCompleted,
			"round_deadline":    nil,
			"verdict_requested": true,
		})
		if result.Error != nil {
			return false, fmt.Errorf("failed to complete debate %s: %w", debate.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return false, nil
		}
		debate.Status = models.DebateStatusCompleted
		debate.RoundDeadline = nil
		debate.VerdictRequested = true
		return true, nil
	default:
		return false, nil
	}
}

// AnnounceTransition fires the post-transition side effects: notifications to
// participants and watchers, and the verdict trigger on completion. All
// best-effort — the transition has already committed.
func (s *DebateService) AnnounceTransition(debate *models.Debate, decision RoundDecision, excludeUserID string) {
	pset, err := ParticipantSetFor(s.DB, debate)
	if err != nil {
		log.Printf("⚠️ [NOTIFY] Participant set for debate %s: %v", debate.ID, err)
		return
	}

	switch decision {
	case DecisionAdvance:
		title := fmt.Sprintf("Round %d has started", debate.CurrentRound)
		message := fmt.Sprintf("\"%s\" advanced to round %d of %d.", debate.Topic, debate.CurrentRound, debate.TotalRounds)
		for _, userID := range pset.ExpectedAuthors() {
			if err := s.Notifier.NotifyParticipant(userID, NotifyTypeRoundAdvanced, title, message); err != nil {
				log.Printf("⚠️ [NOTIFY] Round advance (debate %s): %v", debate.ID, err)
			}
		}
		s.Notifier.NotifyWatchers(debate.ID, NotifyTypeRoundAdvanced, title, message, excludeUserID)
	case DecisionComplete:
		title := "Debate completed"
		message := fmt.Sprintf("\"%s\" has ended — verdicts are being prepared.", debate.Topic)
		for _, userID := range pset.ExpectedAuthors() {
			if err := s.Notifier.NotifyParticipant(userID, NotifyTypeDebateCompleted, title, message); err != nil {
				log.Printf("⚠️ [NOTIFY] Completion (debate %s): %v", debate.ID, err)
			}
		}
		s.Notifier.NotifyWatchers(debate.ID, NotifyTypeDebateCompleted, title, message, excludeUserID)
		s.FireVerdicts(debate)
	}
}

// FireVerdicts hands verdict generation to the judging service. Tournament
// debates take the King-of-the-Hill path and, on success, continue the match
// progression.
func (s *DebateService) FireVerdicts(debate *models.Debate) {
	debateID := debate.ID
	if debate.TournamentID != nil {
		tournamentID := *debate.TournamentID
		tournamentRound := debate.TournamentRound
		TriggerAsync(fmt.Sprintf("king-of-the-hill verdicts for debate %s", debateID), func() error {
			if err := s.Verdicts.GenerateKingOfTheHillVerdicts(debateID, tournamentID, tournamentRound); err != nil {
				return err
			}
			return s.Verdicts.AdvanceMatchOnComplete(debateID)
		})
		return
	}
	TriggerAsync(fmt.Sprintf("verdicts for debate %s", debateID), func() error {
		return s.Verdicts.GenerateVerdicts(debateID)
	})
}

// EliminateParticipant removes a group participant from the expected set for
// all future evaluations. The round completion check re-fetches the roster, so
// an elimination mid-round shrinks the set immediately.
func (s *DebateService) EliminateParticipant(c *fiber.Ctx) error {
	debateID := c.Params("id")
	targetUserID := c.Params("user_id")

	var debate models.Debate
	if err := s.DB.First(&debate, "id = ?", debateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "debate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if debate.ChallengeType != models.ChallengeTypeGroup {
		return c.Status(400).JSON(fiber.Map{"error": "elimination only applies to group debates"})
	}

	now := time.Now()
	result := s.DB.Model(&models.DebateParticipant{}).
		Where("debate_id = ? AND user_id = ? AND status = ?", debateID, targetUserID, models.ParticipantStatusActive).
		Updates(map[string]interface{}{
			"status":        models.ParticipantStatusEliminated,
			"eliminated_at": &now,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "elimination failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "no active participant with that user in this debate"})
	}
	return c.JSON(fiber.Map{"message": "participant eliminated", "user_id": targetUserID})
}

// WatchDebate subscribes the caller to this debate's notifications.
func (s *DebateService) WatchDebate(c *fiber.Ctx) error {
	debateID := c.Params("id")
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	if err := s.DB.First(&models.Debate{}, "id = ?", debateID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "debate not found"})
	}
	watcher := &models.DebateWatcher{
		ID:       uuid.NewString(),
		DebateID: debateID,
		UserID:   userID,
	}
	if err := s.DB.Create(watcher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "already watching this debate"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to watch debate"})
	}
	return c.Status(201).JSON(watcher)
}

func (s *DebateService) UnwatchDebate(c *fiber.Ctx) error {
	debateID := c.Params("id")
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	result := s.DB.Where("debate_id = ? AND user_id = ?", debateID, userID).Delete(&models.DebateWatcher{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "not watching this debate"})
	}
	return c.JSON(fiber.Map{"message": "stopped watching"})
}

func (s *DebateService) GetAllDebates(c *fiber.Ctx) error {
	query := s.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var debates []models.Debate
	if err := query.Find(&debates).Error; err != nil {
		log.Printf("ERROR fetching debates: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch debates"})
	}
	return c.JSON(debates)
}

func (s *DebateService) GetDebateByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var debate models.Debate
	err := s.DB.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Statements", func(db *gorm.DB) *gorm.DB {
			return db.Order("round ASC, created_at ASC")
		}).
		First(&debate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "debate not found"})
		}
		log.Printf("ERROR fetching debate %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(debate)
}

// GetDebateStatements lists statements for a debate, optionally filtered to a
// single round via ?round=N.
func (s *DebateService) GetDebateStatements(c *fiber.Ctx) error {
	debateID := c.Params("id")
	query := s.DB.Where("debate_id = ?", debateID).Order("round ASC, created_at ASC")
	if round := c.QueryInt("round"); round > 0 {
		query = query.Where("round = ?", round)
	}
	var statements []models.Statement
	if err := query.Find(&statements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch statements"})
	}
	return c.JSON(statements)
}
