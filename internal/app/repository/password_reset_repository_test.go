package repository

import (
	"context"
	"testing"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPasswordResetTest(t *testing.T) (*gorm.DB, PasswordResetRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := newUser("reset@example.com", model.RoleCustomer)
	require.NoError(t, testDB.Create(user).Error)

	return testDB, NewPasswordResetRepository(testDB), user
}

func TestPasswordResetRepository_Redeem(t *testing.T) {
	testDB, repo, user := setupPasswordResetTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()
	now := time.Now()

	reset := &model.PasswordReset{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, reset))

	found, err := repo.FindUnusedByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	require.NoError(t, repo.Redeem(ctx, found, "new-hash", now))

	var stored model.User
	require.NoError(t, testDB.First(&stored, user.ID).Error)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.True(t, stored.IsPasswordChanged)

	assert.ErrorIs(t, repo.Redeem(ctx, found, "second-hash", now), ErrResetTokenConsumed)

	_, err = repo.FindUnusedByTokenHash(ctx, "hash-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPasswordResetRepository_RedeemExpiredRollsBack(t *testing.T) {
	testDB, repo, user := setupPasswordResetTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()
	now := time.Now()

	reset := &model.PasswordReset{UserID: user.ID, TokenHash: "hash-2", ExpiresAt: now}
	require.NoError(t, repo.Create(ctx, reset))

	assert.ErrorIs(t, repo.Redeem(ctx, reset, "new-hash", now), ErrResetTokenConsumed)

	var stored model.User
	require.NoError(t, testDB.First(&stored, user.ID).Error)
	assert.Equal(t, "hashedpassword", stored.PasswordHash)
	assert.False(t, stored.IsPasswordChanged)
}

func TestPasswordResetRepository_RedeemMissingUserReleasesClaim(t *testing.T) {
	testDB, repo, user := setupPasswordResetTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()
	now := time.Now()

	reset := &model.PasswordReset{UserID: user.ID, TokenHash: "hash-3", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, reset))

	// keep the reset row while its user disappears
	require.NoError(t, testDB.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, testDB.Delete(&model.User{}, user.ID).Error)

	assert.ErrorIs(t, repo.Redeem(ctx, reset, "new-hash", now), gorm.ErrRecordNotFound)

	var stored model.PasswordReset
	require.NoError(t, testDB.First(&stored, reset.ID).Error)
	assert.False(t, stored.Used)
	assert.Nil(t, stored.UsedAt)

	found, err := repo.FindUnusedByTokenHash(ctx, "hash-3")
	require.NoError(t, err)
	assert.Equal(t, reset.ID, found.ID)
}

func TestPasswordResetRepository_DeleteStale(t *testing.T) {
	testDB, repo, user := setupPasswordResetTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	rows := []model.PasswordReset{
		{UserID: user.ID, TokenHash: "old-expired", ExpiresAt: old.Add(time.Hour), CreatedAt: old},
		{UserID: user.ID, TokenHash: "old-used", ExpiresAt: now.Add(time.Hour), Used: true, CreatedAt: old},
		{UserID: user.ID, TokenHash: "fresh-expired", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)},
		{UserID: user.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	require.NoError(t, testDB.Create(&rows).Error)

	deleted, err := repo.DeleteStale(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []string
	require.NoError(t, testDB.Model(&model.PasswordReset{}).Order("token_hash").Pluck("token_hash", &remaining).Error)
	assert.Equal(t, []string{"fresh-expired", "live"}, remaining)
}
