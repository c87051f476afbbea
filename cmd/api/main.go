package main

import (
	"context"
	"fmt"
	"log"

	"go-opshub/internal/authz"
	common_api "go-opshub/internal/common/api"
	"go-opshub/internal/config"
	"go-opshub/internal/database"
	"go-opshub/internal/features/announcement"
	"go-opshub/internal/features/asset"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/auth"
	"go-opshub/internal/features/document"
	"go-opshub/internal/features/expense"
	"go-opshub/internal/features/project"
	"go-opshub/internal/features/role"
	"go-opshub/internal/features/task"
	"go-opshub/internal/features/user"
	"go-opshub/internal/logger"
	"go-opshub/internal/middleware"
	"go-opshub/internal/scheduler"
	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a route constructor so Fx collects it into the "routes"
// group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every collected route.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer hooks Fiber into the Fx lifecycle.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,
			authz.NewResolver,

			// Repositories
			audit.NewAuditRepository,
			user.NewUserRepository,
			role.NewRoleRepository,
			project.NewProjectRepository,
			task.NewTaskRepository,
			expense.NewExpenseRepository,
			asset.NewAssetRepository,
			document.NewDocumentRepository,
			announcement.NewAnnouncementRepository,

			// Services
			audit.NewAuditService,
			user.NewUserService,
			role.NewRoleService,
			role.NewAccessService,
			auth.NewAuthService,
			project.NewProjectService,
			task.NewTaskService,
			expense.NewExpenseService,
			asset.NewAssetService,
			document.NewDocumentService,
			announcement.NewHub,
			announcement.NewAnnouncementService,

			// Interface adapters to break circular dependencies
			func(s role.AccessService) middleware.AccessService { return s },
			func(r user.UserRepository) role.UserFinder { return r },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) task.UserFinder { return r },
			func(r project.ProjectRepository) role.ProjectFinder { return r },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			role.NewRoleController,
			audit.NewAuditController,
			project.NewProjectController,
			task.NewTaskController,
			expense.NewExpenseController,
			asset.NewAssetController,
			document.NewDocumentController,
			announcement.NewAnnouncementController,
			announcement.NewWebSocketController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(role.NewRoleApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(project.NewProjectApi),
			AsRoute(task.NewTaskApi),
			AsRoute(expense.NewExpenseApi),
			AsRoute(asset.NewAssetApi),
			AsRoute(document.NewDocumentApi),
			AsRoute(announcement.NewAnnouncementApi),

			scheduler.NewScheduler,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, sched *scheduler.Scheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sched.Start()
					},
					OnStop: func(ctx context.Context) error {
						sched.Stop()
						return nil
					},
				})
			},
		),
	)

	app.Run()
}
