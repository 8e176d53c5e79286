package seed

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

// Preset is a declarative seed scenario loaded from YAML. It pins down named
// accounts and their relationships so a dev environment always starts in a
// known state.
type Preset struct {
	Name  string `yaml:"name"`
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Subscriptions []struct {
		Subscriber string `yaml:"subscriber"`
		Target     string `yaml:"target"`
	} `yaml:"subscriptions"`
	Posts []struct {
		Author      string `yaml:"author"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Hidden      bool   `yaml:"hidden"`
	} `yaml:"posts"`
}

// LoadPreset parses a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // preset path comes from config
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return &preset, nil
}

// ApplyPreset upserts the preset's accounts, follow edges and posts.
// Re-applying the same preset is idempotent.
func ApplyPreset(db *gorm.DB, preset *Preset) error {
	byUsername := make(map[string]*models.User, len(preset.Users))

	for _, entry := range preset.Users {
		role := models.RoleUser
		if entry.Role == string(models.RoleAdmin) {
			role = models.RoleAdmin
		}
		password := entry.Password
		if password == "" {
			password = "password123"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", entry.Username, err)
		}

		user := models.User{
			Username: entry.Username,
			Email:    entry.Email,
			Password: string(hash),
			Role:     role,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).Create(&user).Error
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", entry.Username, err)
		}
		if user.ID == 0 {
			if err := db.Where("username = ?", entry.Username).First(&user).Error; err != nil {
				return fmt.Errorf("load user %s: %w", entry.Username, err)
			}
		}
		byUsername[entry.Username] = &user
	}

	for _, edge := range preset.Subscriptions {
		subscriber, ok := byUsername[edge.Subscriber]
		if !ok {
			return fmt.Errorf("subscription references unknown user %q", edge.Subscriber)
		}
		target, ok := byUsername[edge.Target]
		if !ok {
			return fmt.Errorf("subscription references unknown user %q", edge.Target)
		}
		sub := models.Subscription{
			SubscriberID:   subscriber.ID,
			SubscribedToID: target.ID,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error; err != nil {
			return fmt.Errorf("upsert subscription %s -> %s: %w", edge.Subscriber, edge.Target, err)
		}
	}

	for _, entry := range preset.Posts {
		author, ok := byUsername[entry.Author]
		if !ok {
			return fmt.Errorf("post references unknown user %q", entry.Author)
		}
		var existing models.Post
		err := db.Where("user_id = ? AND title = ?", author.ID, entry.Title).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check post %q: %w", entry.Title, err)
		}
		post := models.Post{
			Title:       entry.Title,
			Description: entry.Description,
			Hidden:      entry.Hidden,
			UserID:      author.ID,
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("create post %q: %w", entry.Title, err)
		}
	}

	return nil
}
