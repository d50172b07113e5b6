// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"debate-arena-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileSyncClient mirrors changed profile-service users into user_mirrors so
// notification copy can use display names without a profile call per event.
type ProfileSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewProfileSyncClient(db *gorm.DB, baseURL, serviceToken string) *ProfileSyncClient {
	return &ProfileSyncClient{
		BaseURL: baseURL,
		Token:   serviceToken,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type mirroredProfile struct {
	ExternalID        string     `json:"external_id"`
	Username          string     `json:"username"`
	DisplayName       *string    `json:"display_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	EloRating         int        `json:"elo_rating"`
	IsBanned          bool       `json:"is_banned"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GetChangedProfiles fetches profiles updated since the given time.
func (c *ProfileSyncClient) GetChangedProfiles(ctx context.Context, since time.Time) ([]models.UserMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/profiles", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("profile service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Profiles []mirroredProfile `json:"profiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode profile service response: %w", err)
	}

	mirrors := make([]models.UserMirror, 0, len(response.Profiles))
	for _, p := range response.Profiles {
		mirrors = append(mirrors, models.UserMirror{
			ExternalUserID:    p.ExternalID,
			Username:          p.Username,
			DisplayName:       p.DisplayName,
			ProfilePictureURL: p.ProfilePictureURL,
			EloRating:         p.EloRating,
			IsBanned:          p.IsBanned,
			LastSeen:          p.LastSeen,
		})
	}
	return mirrors, nil
}

// PollProfiles runs the mirror loop until ctx is cancelled.
func PollProfiles(ctx context.Context, client *ProfileSyncClient, pollInterval time.Duration) {
	log.Println("🔁 Starting profile polling (profile-service → user_mirrors)…")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Profile polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			mirrors, err := client.GetChangedProfiles(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling profiles: %v", err)
				continue
			}

			count := len(mirrors)
			if count == 0 {
				continue
			}

			// Bulk upsert keyed on external_user_id — one statement on Postgres.
			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "external_user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"username",
						"display_name",
						"profile_picture_url",
						"elo_rating",
						"is_banned",
						"last_seen",
						"updated_at",
					}),
				},
			).Create(&mirrors).Error; err != nil {
				log.Printf("❌ Failed to upsert %d profile(s) into user_mirrors: %v", count, err)
				// Do NOT advance lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d profile(s) into user_mirrors table.", count)
		}
	}
}
