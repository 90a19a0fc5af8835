package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/security"
)

// Seeds the initial super_admin account so the program office can log in and
// provision everyone else through the API.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	username := flag.String("username", "superadmin", "username for the seeded account")
	password := flag.String("password", "", "password for the seeded account (generated when empty)")
	fullName := flag.String("full-name", "Super Admin", "display name for the seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"username": *username,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	secret := *password
	generated := false
	if secret == "" {
		secret, err = security.GenerateTempPassword(16)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
		generated = true
	}

	hash, err := security.HashPassword(secret, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var existing models.User
		findErr := tx.Where("username = ?", *username).First(&existing).Error
		if findErr == nil {
			return fmt.Errorf("user %q already exists", *username)
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		user := models.User{
			Username:     *username,
			PasswordHash: hash,
			Role:         enums.UserRoleSuperAdmin,
			IsActive:     true,
		}
		if createErr := tx.Create(&user).Error; createErr != nil {
			return createErr
		}
		profile := models.AdminProfile{
			UserID:   user.ID,
			FullName: *fullName,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "super admin seeded")
	if generated {
		fmt.Println("generated password:", secret)
	}
}
