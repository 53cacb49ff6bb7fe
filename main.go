package main

import (
	"log"

	api "mindlog-backend/cmd/api"
	authdomain "mindlog-backend/internal/auth/domain"
	authRepo "mindlog-backend/internal/auth/repository"
	authUsecase "mindlog-backend/internal/auth/usecase"
	journaldomain "mindlog-backend/internal/journal/domain"
	journalRepo "mindlog-backend/internal/journal/repository"
	"mindlog-backend/pkg/config"
	"mindlog-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&journaldomain.JournalEntry{},
		&journaldomain.Summary{},
		&journaldomain.UsageRecord{},
		&journaldomain.RecentSearch{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// The GIN full-text index cannot be expressed through AutoMigrate
	if err := database.EnsureSearchIndex(db); err != nil {
		log.Fatal("Failed to create search index:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	entryRepo := journalRepo.NewEntryRepository(db)
	summaryRepo := journalRepo.NewSummaryRepository(db)
	usageRepo := journalRepo.NewUsageRepository(db)
	recentSearchRepo := journalRepo.NewRecentSearchRepository(db)

	// Initialize use cases
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)

	// Initialize HTTP handler (wires AI client, worker pool, and usecases)
	handler := api.NewHandler(authUsecaseInstance, entryRepo, summaryRepo, usageRepo, recentSearchRepo, cfg)
	defer handler.Stop()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
