package authflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/blacklist"
	"github.com/tech-arch1tect/authcore/services/signer"
	"github.com/tech-arch1tect/authcore/services/token"
	"github.com/tech-arch1tect/authcore/testutils"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

func setupAuthFlow(t *testing.T) (*Service, *blacklist.Service) {
	t.Helper()

	cfg := &config.Config{
		RefreshToken: config.RefreshTokenConfig{
			TTL:           config.Duration(7 * 24 * time.Hour),
			TokenLength:   32,
			MaxPerUser:    5,
			RetentionDays: 30,
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-for-signing-tokens",
			Issuer:       "authcore-test",
			AccessExpiry: 15 * time.Minute,
		},
		Blacklist: config.BlacklistConfig{Store: "memory"},
	}

	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	tokens := token.NewService(db, cfg, nil)
	tokenSigner := signer.NewService(cfg, nil)
	bl := blacklist.NewService(cfg, blacklist.NewMemoryStore(), nil)

	return NewService(tokens, tokenSigner, bl, nil), bl
}

func TestService_Login(t *testing.T) {
	service, _ := setupAuthFlow(t)

	pair, err := service.Login(1, firefoxUA)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(time.Now()))
}

func TestService_Refresh(t *testing.T) {
	service, _ := setupAuthFlow(t)

	t.Run("rotates and signs", func(t *testing.T) {
		pair, err := service.Login(2, firefoxUA)
		require.NoError(t, err)

		refreshed, err := service.Refresh(pair.RefreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken)

		// The old refresh token is gone for good.
		_, err = service.Refresh(pair.RefreshToken)
		testutils.AssertErrorType(t, token.ErrInvalidToken, err)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		_, err := service.Refresh("never-issued")

		testutils.AssertErrorType(t, token.ErrInvalidToken, err)
	})
}

func TestService_Logout(t *testing.T) {
	service, bl := setupAuthFlow(t)

	pair, err := service.Login(3, firefoxUA)
	require.NoError(t, err)

	require.NoError(t, service.Logout(pair.RefreshToken, pair.AccessToken))

	// Refresh token no longer rotates.
	_, err = service.Refresh(pair.RefreshToken)
	testutils.AssertErrorType(t, token.ErrInvalidToken, err)

	// Access token is denylisted for its remaining lifetime.
	blacklisted, err := bl.IsBlacklisted(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestService_Logout_UnverifiableAccessToken(t *testing.T) {
	service, bl := setupAuthFlow(t)

	pair, err := service.Login(4, firefoxUA)
	require.NoError(t, err)

	require.NoError(t, service.Logout(pair.RefreshToken, "garbage-access-token"))

	blacklisted, err := bl.IsBlacklisted("garbage-access-token")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestService_LogoutEverywhere(t *testing.T) {
	service, _ := setupAuthFlow(t)

	for i := 0; i < 3; i++ {
		_, err := service.Login(5, firefoxUA)
		require.NoError(t, err)
	}

	count, err := service.LogoutEverywhere(5)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestDeviceLabel(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		expected string
	}{
		{"firefox on linux", firefoxUA, "Firefox on Linux"},
		{"empty", "", ""},
		{"unparseable", "definitely not a user agent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeviceLabel(tt.ua))
		})
	}
}
