// Manual trigger for the attempt expiry sweep.
//
// The sweep runs inside the server on a timer; this script runs it once by
// hand, for example after the server was down long enough for time-limited
// attempts to pile up past their deadlines.
//
// Usage: go run scripts/expire_attempts.go
package main

import (
	"log"
	"time"

	"assesspro_backend/internal/config"
	"assesspro_backend/internal/repository"
	"assesspro_backend/internal/service"
	"assesspro_backend/pkg/database"
	"assesspro_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	attemptRepo := repository.NewAttemptRepository(db)
	cooldown := service.NewCooldownService(attemptRepo, repository.NewCooldownExceptionRepository(db))
	passing := service.NewTestPassingService(
		repository.NewTestRepository(db),
		attemptRepo,
		repository.NewUserAnswerRepository(db),
		repository.NewUserRepository(db),
		cooldown,
		db,
	)

	if err := passing.ProcessExpiredAttempts(time.Now()); err != nil {
		log.Fatalf("Expiry sweep failed: %v", err)
	}
	log.Println("Expiry sweep completed")
}
