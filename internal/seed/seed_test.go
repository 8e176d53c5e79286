package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{},
		&models.Subscription{}, &models.Notification{}, &models.Report{},
	))
	return db
}

func TestFactory_CreateUserAndPost(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	post, err := f.CreatePost(user)
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, user.ID, post.UserID)
	assert.NotEmpty(t, post.Title)
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_SubscriptionSkipsSelfAndDuplicates(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	require.NoError(t, f.CreateSubscription(a, a))
	require.NoError(t, f.CreateSubscription(a, b))
	require.NoError(t, f.CreateSubscription(a, b))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyPreset_Idempotent(t *testing.T) {
	db := setupSeedDB(t)

	preset := filepath.Join(t.TempDir(), "preset.yml")
	require.NoError(t, os.WriteFile(preset, []byte(`
name: demo
users:
  - username: root
    email: root@example.com
    password: RootPass123!abc
    role: ADMIN
  - username: writer
    email: writer@example.com
subscriptions:
  - subscriber: root
    target: writer
posts:
  - author: writer
    title: welcome
    description: first demo post
  - author: writer
    title: under review
    description: hidden demo post
    hidden: true
`), 0o600))

	loaded, err := LoadPreset(preset)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)

	require.NoError(t, ApplyPreset(db, loaded))
	require.NoError(t, ApplyPreset(db, loaded))

	var userCount, subCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 2, userCount)
	assert.EqualValues(t, 1, subCount)
	assert.EqualValues(t, 2, postCount)

	var root models.User
	require.NoError(t, db.Where("username = ?", "root").First(&root).Error)
	assert.Equal(t, models.RoleAdmin, root.Role)

	var hidden models.Post
	require.NoError(t, db.Where("title = ?", "under review").First(&hidden).Error)
	assert.True(t, hidden.Hidden)
}

func TestLoadPreset_MissingFile(t *testing.T) {
	_, err := LoadPreset("/nonexistent/preset.yml")
	assert.Error(t, err)
}
