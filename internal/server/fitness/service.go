// Package fitness exposes the fitness-provider integration surface: building
// the OAuth consent URL and syncing activity data. The actual code exchange
// and data fetch belong to the provider client and are mocked here.
package fitness

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

const (
	authEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	redirectURI   = "http://localhost:8080/api/integration/google/callback"
	activityScope = "https://www.googleapis.com/auth/fitness.activity.read"
)

// SyncResult is one completed activity sync.
type SyncResult struct {
	Provider string    `json:"provider"`
	Steps    int       `json:"steps"`
	SyncedAt time.Time `json:"synced_at"`
}

type Service struct {
	clientID string
}

func NewService(clientID string) *Service {
	return &Service{clientID: clientID}
}

// AuthURL builds the provider consent URL for the configured client.
func (s *Service) AuthURL() string {
	q := url.Values{}
	q.Set("client_id", s.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", activityScope)
	return fmt.Sprintf("%s?%s", authEndpoint, q.Encode())
}

// Sync exchanges the consent code and pulls activity data for the ambient
// principal. The exchange is mocked; a production build swaps in the real
// provider client behind the same signature.
func (s *Service) Sync(ctx context.Context, code string) (*SyncResult, error) {
	if _, ok := reqctx.PrincipalID(ctx); !ok {
		return nil, common.ErrInvalidToken
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing consent code", common.ErrInvalidArgument)
	}

	return &SyncResult{
		Provider: "google_fit",
		Steps:    rand.Intn(10000),
		SyncedAt: time.Now(),
	}, nil
}
