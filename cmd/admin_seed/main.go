// Command admin_seed provisions the initial admin account and its wallet.
package main

import (
	"log"
	"os"

	"payvault/internal/config"
	"payvault/internal/models"
	"payvault/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Printf("Failed to close database connection: %v", err)
				}
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close cache connection: %v", err)
			}
		}
	}()

	var existingAdmin models.User
	if result := repositories.DB.Where("email = ?", adminEmail).First(&existingAdmin); result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := &models.User{
		Name:         config.GetEnv("ADMIN_NAME", "Administrator"),
		Email:        adminEmail,
		Password:     string(hashedPassword),
		Role:         "admin",
		TokenVersion: 1,
	}

	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	if err := userRepo.CreateWithWallet(adminUser); err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Println("Admin account created successfully")
}
