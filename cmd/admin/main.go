// Package main provides account management utilities for 01BLOG.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/AHMED-techNOP/01BLOG/internal/config"
	"github.com/AHMED-techNOP/01BLOG/internal/database"
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>      - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>       - Demote user from admin")
		fmt.Println("  go run ./cmd/admin/main.go ban <user_id>          - Ban a user account")
		fmt.Println("  go run ./cmd/admin/main.go unban <user_id>        - Unban a user account")
		fmt.Println("  go run ./cmd/admin/main.go list-admins            - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		setRole(db, arg(2), models.RoleAdmin)
	case "demote":
		setRole(db, arg(2), models.RoleUser)
	case "ban":
		setBanned(db, arg(2), true)
	case "unban":
		setBanned(db, arg(2), false)
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func arg(i int) string {
	if len(os.Args) <= i {
		fmt.Printf("Usage: go run ./cmd/admin/main.go %s <user_id>\n", os.Args[1])
		os.Exit(1)
	}
	return os.Args[i]
}

func loadUser(db *gorm.DB, userID string) *models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}
	return &user
}

func setRole(db *gorm.DB, userID string, role models.Role) {
	user := loadUser(db, userID)
	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	user.Role = role
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	fmt.Printf("User %s (ID: %d) role set to %s\n", user.Username, user.ID, role)
}

func setBanned(db *gorm.DB, userID string, banned bool) {
	user := loadUser(db, userID)
	if user.IsAdmin() && banned {
		fmt.Printf("User %s (ID: %d) is an admin; demote before banning\n", user.Username, user.ID)
		os.Exit(1)
	}
	if user.IsBanned == banned {
		fmt.Printf("User %s (ID: %d) ban state already %v\n", user.Username, user.ID, banned)
		return
	}

	user.IsBanned = banned
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	state := "unbanned"
	if banned {
		state = "banned"
	}
	fmt.Printf("User %s (ID: %d) %s\n", user.Username, user.ID, state)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admin accounts found")
		return
	}

	fmt.Printf("Admin accounts (%d):\n", len(admins))
	for _, a := range admins {
		fmt.Printf("  %d\t%s\t%s\n", a.ID, a.Username, a.Email)
	}
}
