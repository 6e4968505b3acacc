package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"taskly/internal/config"
	"taskly/internal/repository/postgres"
	"taskly/internal/seed"
	"taskly/internal/service"
	"taskly/internal/service/sharing"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	fixturesPath := flag.String("fixtures", "", "Path to a YAML fixture file (default: embedded fixtures)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	fixtures, err := seed.LoadFixtures(*fixturesPath)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	// Build the same service stack the server uses so seeded data goes
	// through validation, duplicate checks and membership invariants.
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

	mutator := sharing.NewMutator(membershipStore, logger)

	userService := service.NewUserService(userRepo, categoryRepo, subCategoryRepo, taskRepo, txManager, nil, logger)
	taskService := service.NewTaskService(taskRepo, logger)
	annotationService := service.NewAnnotationService(annotationRepo, attachmentRepo, groupRepo, mutator, logger)
	groupService := service.NewGroupService(groupRepo, annotationRepo, mutator, logger)

	seeder := seed.NewSeeder(userService, taskService, annotationService, groupService, mutator, logger)

	if err := seeder.Run(ctx, fixtures); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}
