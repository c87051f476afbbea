package main

import (
	"context"
	"os"
	"time"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/database"
	"go-opshub/internal/features/role"
	"go-opshub/internal/features/user"
	"go-opshub/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed installs the five system roles and a bootstrap superuser account.
// It is idempotent: existing roles and users are left alone.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding system roles")

				for _, tag := range models.AllSystemRoleTags {
					if existing, err := roleRepo.FindByTag(ctx, tag); err == nil && existing != nil {
						logger.Info("Role exists, skipping", zap.String("tag", string(tag)))
						continue
					}

					now := time.Now()
					r := &models.Role{
						ID:          primitive.NewObjectID(),
						Tag:         tag,
						Name:        authz.SystemRoleName(tag),
						IsSystem:    true,
						Permissions: authz.SystemRolePermissions(tag),
						CreatedAt:   now,
						UpdatedAt:   now,
					}
					if err := roleRepo.Create(ctx, r); err != nil {
						logger.Fatal("Failed to create role", zap.String("tag", string(tag)), zap.Error(err))
					}
					logger.Info("Role created", zap.String("tag", string(tag)), zap.String("name", r.Name))
				}

				email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
				if email == "" {
					email = "admin@opshub.local"
				}
				password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
				if password == "" {
					password = "changeme"
				}

				if existing, err := userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
					logger.Info("Bootstrap user exists, skipping", zap.String("email", email))
					return
				}

				hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
				if err != nil {
					logger.Fatal("Failed to hash bootstrap password", zap.Error(err))
				}

				now := time.Now()
				admin := &models.User{
					ID:          primitive.NewObjectID(),
					Email:       email,
					Password:    string(hashed),
					DisplayName: "Administrator",
					Role:        models.RoleSuperuser,
					IsActive:    true,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := userRepo.Create(ctx, admin); err != nil {
					logger.Fatal("Failed to create bootstrap user", zap.Error(err))
				}

				logger.Info("Bootstrap user created", zap.String("email", email))
				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			role.NewRoleRepository,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
