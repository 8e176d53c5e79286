package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
)

// testFixture bundles an in-memory database with real repositories so
// service tests exercise the full query path.
type testFixture struct {
	db            *gorm.DB
	users         repository.UserRepository
	posts         repository.PostRepository
	comments      repository.CommentRepository
	subs          repository.SubscriptionRepository
	notifications repository.NotificationRepository
	reports       repository.ReportRepository
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	db := setupTestDB(t)
	return &testFixture{
		db:            db,
		users:         repository.NewUserRepository(db),
		posts:         repository.NewPostRepository(db),
		comments:      repository.NewCommentRepository(db),
		subs:          repository.NewSubscriptionRepository(db),
		notifications: repository.NewNotificationRepository(db),
		reports:       repository.NewReportRepository(db),
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Notification{},
		&models.Report{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestPost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       title,
		Description: "some description",
		UserID:      author.ID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
