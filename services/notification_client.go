// debate-arena-system/services/notification_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"debate-arena-system/models"
	"debate-arena-system/utils"

	"gorm.io/gorm"
)

// Notification event types consumed by the notification service.
const (
	NotifyTypeYourTurn        = "debate_your_turn"
	NotifyTypeRoundAdvanced   = "debate_round_advanced"
	NotifyTypeRoundLost       = "debate_round_lost"
	NotifyTypeRoundTied       = "debate_round_tied"
	NotifyTypeDebateCompleted = "debate_completed"
	NotifyTypeDebateCancelled = "debate_cancelled"
)

// NotifierClient delivers user notifications via the notification service.
// Delivery is best-effort everywhere it is used: a failed send is logged and
// must never block or roll back a round transition.
type NotifierClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
	DB      *gorm.DB // watcher fan-out + display names
}

func NewNotifierClient(db *gorm.DB, baseURL, serviceToken string) *NotifierClient {
	return &NotifierClient{
		BaseURL: baseURL,
		Token:   serviceToken,
		DB:      db,
		Client:  utils.HTTPClient,
	}
}

type notificationPayload struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NotifyParticipant sends one notification. Errors are returned so callers
// can log them, but callers never propagate them further.
func (n *NotifierClient) NotifyParticipant(userID, eventType, title, message string) error {
	payload := notificationPayload{
		UserID:  userID,
		Type:    eventType,
		Title:   title,
		Message: message,
	}
	jsonData, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/api/v1/notifications", n.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.Token)

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// NotifyWatchers fans a notification out to everyone watching a debate,
// optionally skipping one user (e.g. the author whose action caused the event).
func (n *NotifierClient) NotifyWatchers(debateID, eventType, title, message, excludeUserID string) {
	var watchers []models.DebateWatcher
	if err := n.DB.Where("debate_id = ?", debateID).Find(&watchers).Error; err != nil {
		log.Printf("❌ [NOTIFY] Failed to fetch watchers for debate %s: %v", debateID, err)
		return
	}
	for _, w := range watchers {
		if w.UserID == excludeUserID {
			continue
		}
		if err := n.NotifyParticipant(w.UserID, eventType, title, message); err != nil {
			log.Printf("⚠️ [NOTIFY] Watcher %s (debate %s): %v", w.UserID, debateID, err)
		}
	}
}

// DisplayName resolves a user's name from the local mirror; falls back to the
// raw ID when the mirror has not caught up yet.
func (n *NotifierClient) DisplayName(userID string) string {
	var user models.UserMirror
	if err := n.DB.Where("external_user_id = ?", userID).First(&user).Error; err != nil {
		return userID
	}
	return user.Name()
}
