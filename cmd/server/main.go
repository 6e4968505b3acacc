package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/domain/models"
	"taskly/internal/handler"
	"taskly/internal/middleware"
	"taskly/internal/repository/postgres"
	"taskly/internal/service"
	"taskly/internal/service/sharing"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, config.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Token verification: JWKS when an identity provider is configured,
	// shared-secret HMAC otherwise. Only the HMAC setup issues tokens.
	var verifier auth.TokenVerifier
	var issuer *auth.TokenIssuer
	var err error
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	} else {
		verifier, err = auth.NewJWTVerifier(cfg.JWTSecret, logger)
		if err == nil {
			issuer, err = auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
		}
	}
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	taskRepo := postgres.NewTaskRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	subCategoryRepo := postgres.NewSubCategoryRepository(repoConfig)
	annotationRepo := postgres.NewAnnotationRepository(repoConfig)
	groupRepo := postgres.NewGroupRepository(repoConfig)
	attachmentRepo := postgres.NewAttachmentRepository(repoConfig)
	membershipStore := postgres.NewMembershipStore(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Sharing engine: one guard and one mutator serve both annotations
	// and groups.
	guard := sharing.NewGuard(membershipStore, logger)
	mutator := sharing.NewMutator(membershipStore, logger)

	// Create services
	userService := service.NewUserService(userRepo, categoryRepo, subCategoryRepo, taskRepo, txManager, issuer, logger)
	taskService := service.NewTaskService(taskRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	subCategoryService := service.NewSubCategoryService(subCategoryRepo, categoryRepo, logger)
	annotationService := service.NewAnnotationService(annotationRepo, attachmentRepo, groupRepo, mutator, logger)
	groupService := service.NewGroupService(groupRepo, annotationRepo, mutator, logger)

	// Create handlers
	userHandler := handler.NewUserHandler(userService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, subCategoryService, logger)
	annotationHandler := handler.NewAnnotationHandler(annotationService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)

	logger.Info("services initialized")

	// Role sets reused across guarded routes
	routeGuard := middleware.NewRouteGuard(guard, logger)
	adminOnly := []models.Role{models.RoleAdmin}
	editRoles := []models.Role{models.RoleAdmin, models.RoleEdit, models.RoleDelete}
	viewRoles := []models.Role{models.RoleAdmin, models.RoleEdit, models.RoleDelete, models.RoleViewer}

	onAnnotation := func(roles []models.Role) func(http.HandlerFunc) http.HandlerFunc {
		return routeGuard.Require(roles, "annotationId", "")
	}
	onGroup := func(roles []models.Role) func(http.HandlerFunc) http.HandlerFunc {
		return routeGuard.Require(roles, "", "groupId")
	}
	onBoth := func(roles []models.Role) func(http.HandlerFunc) http.HandlerFunc {
		return routeGuard.Require(roles, "annotationId", "groupId")
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// User routes
	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.HandleFunc("GET /api/users/me", userHandler.Me)
	mux.HandleFunc("PATCH /api/users/me", userHandler.Update)
	mux.HandleFunc("DELETE /api/users/me", userHandler.Delete)

	// Task routes (single-owner, no sharing)
	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("GET /api/tasks/search", taskHandler.Search) // Must come before {id} route
	mux.HandleFunc("PATCH /api/tasks/update-status", taskHandler.RefreshStatuses)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)

	// Category routes
	mux.HandleFunc("POST /api/categories", categoryHandler.Create)
	mux.HandleFunc("GET /api/categories", categoryHandler.List)
	mux.HandleFunc("GET /api/categories/{id}", categoryHandler.Get)
	mux.HandleFunc("PATCH /api/categories/{id}", categoryHandler.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", categoryHandler.Delete)

	// Subcategory routes
	mux.HandleFunc("POST /api/subcategories", categoryHandler.CreateSub)
	mux.HandleFunc("GET /api/subcategories", categoryHandler.ListSubs)
	mux.HandleFunc("GET /api/subcategories/{id}", categoryHandler.GetSub)
	mux.HandleFunc("PATCH /api/subcategories/{id}", categoryHandler.UpdateSub)
	mux.HandleFunc("DELETE /api/subcategories/{id}", categoryHandler.DeleteSub)

	// Annotation routes. Reads need any role, payload updates need an
	// editing role, membership and link changes are admin-only. Deletion
	// is owner-only, enforced in the service.
	mux.HandleFunc("POST /api/annotations", annotationHandler.Create)
	mux.HandleFunc("GET /api/annotations", annotationHandler.List)
	mux.HandleFunc("GET /api/annotations/search", annotationHandler.Search)
	mux.HandleFunc("GET /api/annotations/{annotationId}", onAnnotation(viewRoles)(annotationHandler.Get))
	mux.HandleFunc("PATCH /api/annotations/{annotationId}", onAnnotation(editRoles)(annotationHandler.Update))
	mux.HandleFunc("DELETE /api/annotations/{annotationId}", onAnnotation(adminOnly)(annotationHandler.Delete))

	// Annotation membership routes
	mux.HandleFunc("POST /api/annotations/{annotationId}/members", onAnnotation(adminOnly)(annotationHandler.AddMembers))
	mux.HandleFunc("PATCH /api/annotations/{annotationId}/members", onAnnotation(adminOnly)(annotationHandler.UpdateMemberRole))
	mux.HandleFunc("DELETE /api/annotations/{annotationId}/members/{userId}", onAnnotation(adminOnly)(annotationHandler.RemoveMember))

	// Annotation group-link routes. Both identifiers are present, so the
	// guard checks the annotation and the group conjunctively.
	mux.HandleFunc("POST /api/annotations/{annotationId}/groups/{groupId}", onBoth(adminOnly)(annotationHandler.AttachGroup))
	mux.HandleFunc("DELETE /api/annotations/{annotationId}/groups/{groupId}", onBoth(adminOnly)(annotationHandler.DetachGroup))

	// Attachment routes
	mux.HandleFunc("POST /api/annotations/{annotationId}/attachments", onAnnotation(editRoles)(annotationHandler.UploadAttachment))
	mux.HandleFunc("GET /api/annotations/{annotationId}/attachments/{name}", onAnnotation(viewRoles)(annotationHandler.GetAttachment))
	mux.HandleFunc("DELETE /api/annotations/{annotationId}/attachments/{name}", onAnnotation(editRoles)(annotationHandler.DeleteAttachment))

	// Group routes
	mux.HandleFunc("POST /api/groups", groupHandler.Create)
	mux.HandleFunc("GET /api/groups", groupHandler.List)
	mux.HandleFunc("GET /api/groups/search", groupHandler.Search)
	mux.HandleFunc("GET /api/groups/{groupId}", onGroup(viewRoles)(groupHandler.Get))
	mux.HandleFunc("PATCH /api/groups/{groupId}", onGroup(editRoles)(groupHandler.Update))
	mux.HandleFunc("DELETE /api/groups/{groupId}", onGroup(adminOnly)(groupHandler.Delete))

	// Group membership routes
	mux.HandleFunc("POST /api/groups/{groupId}/members", onGroup(adminOnly)(groupHandler.AddMembers))
	mux.HandleFunc("PATCH /api/groups/{groupId}/members", onGroup(adminOnly)(groupHandler.UpdateMemberRole))
	mux.HandleFunc("DELETE /api/groups/{groupId}/members/{userId}", onGroup(adminOnly)(groupHandler.RemoveMember))

	// Group-scoped annotation routes
	mux.HandleFunc("POST /api/groups/{groupId}/annotations", onGroup(editRoles)(annotationHandler.CreateInGroup))
	mux.HandleFunc("GET /api/groups/{groupId}/annotations", onGroup(viewRoles)(annotationHandler.ListByGroup))

	// Build middleware chain
	var rootHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	rootHandler = middleware.Auth(verifier, logger)(rootHandler)
	rootHandler = middleware.Recovery(logger)(rootHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	rootHandler = corsHandler.Handler(rootHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
