// Command main runs the database seeder for 01BLOG.
package main

import (
	"flag"
	"log"

	"github.com/AHMED-techNOP/01BLOG/internal/config"
	"github.com/AHMED-techNOP/01BLOG/internal/database"
	"github.com/AHMED-techNOP/01BLOG/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a YAML seed preset instead of the random mesh")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *preset != "" {
		p, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Failed to load preset %s: %v", *preset, err)
		}
		if err := seed.ApplyPreset(db, p); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
		log.Printf("Applied preset %s (%s)", *preset, p.Name)
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! All demo users have the password: password123")
}
