// debate-arena-system/services/verdict_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// VerdictClient talks to the judging service. Verdict generation is
// asynchronous with at-least-once semantics: the caller that wins the
// completion update hands the trigger to a background goroutine and moves on.
// Failures are retried a few times, then logged — they never roll back the
// already-committed completion.
type VerdictClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewVerdictClient(baseURL, serviceToken string) *VerdictClient {
	return &VerdictClient{
		BaseURL: baseURL,
		Token:   serviceToken,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (v *VerdictClient) post(path string, payload interface{}) error {
	jsonData, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s%s", v.BaseURL, path)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", v.Token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call judge service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("judge service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// GenerateVerdicts asks the judging service to evaluate a completed standard
// debate.
func (v *VerdictClient) GenerateVerdicts(debateID string) error {
	return v.post("/api/v1/verdicts/generate", map[string]interface{}{
		"debate_id": debateID,
	})
}

// GenerateKingOfTheHillVerdicts is the tournament-aware verdict path for
// debates that belong to a King-of-the-Hill match.
func (v *VerdictClient) GenerateKingOfTheHillVerdicts(debateID, tournamentID string, roundNumber int) error {
	return v.post("/api/v1/verdicts/king-of-the-hill", map[string]interface{}{
		"debate_id":     debateID,
		"tournament_id": tournamentID,
		"round_number":  roundNumber,
	})
}

// AdvanceMatchOnComplete continues the tournament match progression after a
// successful King-of-the-Hill verdict.
func (v *VerdictClient) AdvanceMatchOnComplete(debateID string) error {
	return v.post("/api/v1/matches/advance-on-complete", map[string]interface{}{
		"debate_id": debateID,
	})
}

// TriggerAsync runs fn in the background with bounded retries. This is the
// explicit form of fire-and-forget: the state transition has already
// committed, so the only failure handling left is retry and log.
func TriggerAsync(label string, fn func() error) {
	go func() {
		var err error
		for attempt := 1; attempt <= 3; attempt++ {
			if err = fn(); err == nil {
				if attempt > 1 {
					log.Printf("✅ [VERDICT] %s succeeded on attempt %d", label, attempt)
				}
				return
			}
			log.Printf("⚠️ [VERDICT] %s attempt %d failed: %v", label, attempt, err)
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
		log.Printf("❌ [VERDICT] %s gave up after 3 attempts: %v", label, err)
	}()
}
