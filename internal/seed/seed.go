package seed

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with demo accounts, a follow mesh and posts
// with likes and comments.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	users, err := f.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("%d demo users created", len(users))

	if err := f.createFollowMesh(users); err != nil {
		return fmt.Errorf("create follow mesh: %w", err)
	}

	posts, err := f.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("%d posts created", posts)

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE reports, notifications, comments, likes, subscriptions, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func (f *Factory) createUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)
		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

// createFollowMesh gives every user a handful of subscriptions so the feed
// has something to compose.
func (f *Factory) createFollowMesh(users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, u := range users {
		follows := f.rng.Intn(5) + 1
		for j := 0; j < follows; j++ {
			target := users[f.rng.Intn(len(users))]
			if err := f.CreateSubscription(u, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Factory) createPosts(users []*models.User, count int) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	created := 0
	for i := 0; i < count; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return created, err
		}
		created++

		likes := f.rng.Intn(6)
		for j := 0; j < likes; j++ {
			liker := users[f.rng.Intn(len(users))]
			if err := f.CreateLike(liker, post); err != nil {
				return created, err
			}
		}

		comments := f.rng.Intn(4)
		for j := 0; j < comments; j++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return created, err
			}
		}

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return created, nil
}
