package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus_exchange/internal/config"
	"campus_exchange/internal/repository/repotest"
	"campus_exchange/pkg/jwt"
	"campus_exchange/pkg/logger"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{AccessSecret: testSecret, Issuer: "campus-exchange"},
		Chat: config.ChatConfig{
			SendBuffer:  8,
			MaxPageSize: 100,
		},
		Archive: config.ArchiveConfig{
			Enabled:   true,
			Cron:      "0 3 * * *",
			IdleAfter: 24 * time.Hour,
		},
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
		Uploads:   config.UploadConfig{MaxBytes: 1024, PublicBaseURL: "/uploads"},
	}
}

// newTestServices seeds owner (listing 1), buyer and stranger.
func newTestServices(t *testing.T) (*Services, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	store.AddUser("owner", "owner@campus.edu")
	store.AddUser("buyer", "buyer@campus.edu")
	store.AddUser("stranger", "stranger@campus.edu")
	store.AddListing(1, "owner")

	cfg := testConfig()
	cfg.Uploads.Dir = t.TempDir()
	return NewServices(store.Repositories(), cfg, nil, logger.Nop()), store
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(subject, subject+"@campus.edu", testSecret, "campus-exchange", time.Hour)
	require.NoError(t, err)
	return tok
}
