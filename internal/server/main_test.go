package server

import (
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/config"
	"github.com/AHMED-techNOP/01BLOG/internal/media"
	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
	"github.com/AHMED-techNOP/01BLOG/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

func setupServerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Subscription{},
		&models.Notification{},
		&models.Report{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server over an in-memory sqlite database without
// Redis or Prometheus middleware. The media store writes into a per-test
// temp dir.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := setupServerDB(t)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	mediaStore, err := media.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	s := &Server{
		config:           &config.Config{JWTSecret: testJWTSecret, UploadDir: "uploads"},
		db:               db,
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		subscriptionRepo: subscriptionRepo,
		notificationRepo: notificationRepo,
		reportRepo:       reportRepo,
		mediaStore:       mediaStore,
		consumedTickets:  make(map[string]consumedTicketEntry),
	}

	s.userService = service.NewUserService(userRepo, subscriptionRepo)
	s.postService = service.NewPostService(postRepo, userRepo, mediaStore)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.subscriptionService = service.NewSubscriptionService(subscriptionRepo, userRepo)
	s.notificationService = service.NewNotificationService(notificationRepo)
	s.moderationService = service.NewModerationService(userRepo, postRepo, reportRepo)
	s.feedService = service.NewFeedService(postRepo, subscriptionRepo)
	s.fanoutService = service.NewFanoutService(subscriptionRepo, notificationRepo, nil, nil)

	return s, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Description: "some description",
		UserID:      author.ID,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}
