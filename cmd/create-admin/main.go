// Command create-admin creates an account with both the admin and organizer
// flags set. Usage: create-admin -email admin@example.com -name Admin
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/portalevent/portal-api/internal/config"
	"github.com/portalevent/portal-api/internal/db"
	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/logger"
	"github.com/portalevent/portal-api/internal/repository"
	"github.com/portalevent/portal-api/internal/repository/dao"
	"github.com/portalevent/portal-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the config file")
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Admin", "admin display name")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		return errors.New("-email and ADMIN_PASSWORD are required")
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config.Load -> %w", err)
	}
	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("logger.Init -> %w", err)
	}

	ctx := context.Background()

	var postgresDB *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	svc := service.NewAuthService(repository.NewUserRepository(dao.NewUserDAO(postgresDB)))
	user, err := svc.CreateAdmin(ctx, domain.User{
		Email:    *email,
		Password: password,
		Name:     *name,
	})
	if err != nil {
		return fmt.Errorf("svc.CreateAdmin -> %w", err)
	}

	zap.L().Info("admin created", zap.Uint("id", user.ID), zap.String("email", user.Email))

	return nil
}
