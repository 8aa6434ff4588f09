package sessions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/authcore/services/token"
	"github.com/tech-arch1tect/authcore/testutils"
	"gorm.io/gorm"
)

func seedSessionRow(t *testing.T, db *gorm.DB, userID uint, createdAt, expiresAt time.Time, revoked bool) token.RefreshToken {
	t.Helper()

	row := token.RefreshToken{
		ID:         uuid.New().String(),
		Token:      uuid.New().String(),
		UserID:     userID,
		DeviceInfo: "Firefox on Linux",
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
		IsRevoked:  revoked,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestService_GetActiveSessions(t *testing.T) {
	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	service := NewService(db, nil)

	userID := uint(10)
	now := time.Now()

	older := seedSessionRow(t, db, userID, now.Add(-2*time.Hour), now.Add(24*time.Hour), false)
	newer := seedSessionRow(t, db, userID, now.Add(-time.Hour), now.Add(24*time.Hour), false)
	seedSessionRow(t, db, userID, now.Add(-3*time.Hour), now.Add(24*time.Hour), true)
	seedSessionRow(t, db, userID, now.Add(-4*time.Hour), now.Add(-time.Minute), false)
	seedSessionRow(t, db, 11, now.Add(-time.Hour), now.Add(24*time.Hour), false)

	sessions, err := service.GetActiveSessions(userID)

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
	for _, session := range sessions {
		assert.True(t, session.ExpiresAt.After(time.Now()))
		assert.Equal(t, "Firefox on Linux", session.DeviceInfo)
	}
}

func TestService_GetActiveSessions_Empty(t *testing.T) {
	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	service := NewService(db, nil)

	sessions, err := service.GetActiveSessions(999)

	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestService_ValidateRefreshToken(t *testing.T) {
	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	service := NewService(db, nil)

	now := time.Now()
	valid := seedSessionRow(t, db, 20, now, now.Add(24*time.Hour), false)
	revoked := seedSessionRow(t, db, 20, now, now.Add(24*time.Hour), true)
	expired := seedSessionRow(t, db, 20, now.Add(-48*time.Hour), now.Add(-time.Hour), false)

	t.Run("valid token", func(t *testing.T) {
		row, err := service.ValidateRefreshToken(20, valid.Token)

		require.NoError(t, err)
		assert.Equal(t, valid.ID, row.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := service.ValidateRefreshToken(20, "no-such-token")

		testutils.AssertErrorType(t, ErrSessionNotFound, err)
	})

	t.Run("another user's token", func(t *testing.T) {
		_, err := service.ValidateRefreshToken(21, valid.Token)

		testutils.AssertErrorType(t, ErrSessionNotFound, err)
	})

	t.Run("revoked token", func(t *testing.T) {
		_, err := service.ValidateRefreshToken(20, revoked.Token)

		testutils.AssertErrorType(t, ErrSessionNotFound, err)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := service.ValidateRefreshToken(20, expired.Token)

		testutils.AssertErrorType(t, ErrSessionExpired, err)
	})
}

func TestService_RevokeSession(t *testing.T) {
	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	service := NewService(db, nil)

	now := time.Now()

	t.Run("owner can revoke", func(t *testing.T) {
		row := seedSessionRow(t, db, 30, now, now.Add(24*time.Hour), false)

		err := service.RevokeSession(30, row.ID, false)

		require.NoError(t, err)
		var updated token.RefreshToken
		require.NoError(t, db.Where("id = ?", row.ID).First(&updated).Error)
		assert.True(t, updated.IsRevoked)
	})

	t.Run("admin can revoke another user's session", func(t *testing.T) {
		row := seedSessionRow(t, db, 31, now, now.Add(24*time.Hour), false)

		err := service.RevokeSession(999, row.ID, true)

		require.NoError(t, err)
		var updated token.RefreshToken
		require.NoError(t, db.Where("id = ?", row.ID).First(&updated).Error)
		assert.True(t, updated.IsRevoked)
	})

	t.Run("non-owner non-admin is forbidden and row stays live", func(t *testing.T) {
		row := seedSessionRow(t, db, 32, now, now.Add(24*time.Hour), false)

		err := service.RevokeSession(33, row.ID, false)

		testutils.AssertErrorType(t, ErrForbidden, err)
		var untouched token.RefreshToken
		require.NoError(t, db.Where("id = ?", row.ID).First(&untouched).Error)
		assert.False(t, untouched.IsRevoked)
	})

	t.Run("missing session", func(t *testing.T) {
		err := service.RevokeSession(30, uuid.New().String(), false)

		testutils.AssertErrorType(t, ErrSessionNotFound, err)
	})

	t.Run("already revoked", func(t *testing.T) {
		row := seedSessionRow(t, db, 34, now, now.Add(24*time.Hour), true)

		err := service.RevokeSession(34, row.ID, false)

		testutils.AssertErrorType(t, ErrAlreadyRevoked, err)
	})
}

func TestService_DeleteSession(t *testing.T) {
	db := testutils.SetupTestDB(t, &token.RefreshToken{})
	service := NewService(db, nil)

	now := time.Now()

	t.Run("owner can delete", func(t *testing.T) {
		row := seedSessionRow(t, db, 40, now, now.Add(24*time.Hour), false)

		err := service.DeleteSession(row.ID, 40, false)

		require.NoError(t, err)
		var count int64
		require.NoError(t, db.Model(&token.RefreshToken{}).Where("id = ?", row.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("non-owner non-admin is forbidden", func(t *testing.T) {
		row := seedSessionRow(t, db, 41, now, now.Add(24*time.Hour), false)

		err := service.DeleteSession(row.ID, 42, false)

		testutils.AssertErrorType(t, ErrForbidden, err)
		var count int64
		require.NoError(t, db.Model(&token.RefreshToken{}).Where("id = ?", row.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("admin can delete", func(t *testing.T) {
		row := seedSessionRow(t, db, 43, now, now.Add(24*time.Hour), false)

		err := service.DeleteSession(row.ID, 999, true)

		require.NoError(t, err)
	})

	t.Run("missing session", func(t *testing.T) {
		err := service.DeleteSession(uuid.New().String(), 40, true)

		testutils.AssertErrorType(t, ErrSessionNotFound, err)
	})
}
