package main

import (
	"context"
	"log"

	"flowcredits-be/internal/bootstrap"
	"flowcredits-be/internal/config"
	"flowcredits-be/internal/server"
	"flowcredits-be/internal/tracer"
	"flowcredits-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Replenish Consumer...")
		if err := container.ReplenishService.Consume(context.Background()); err != nil {
			log.Printf("Background Replenish Error: %v", err)
		}
	}()
	container.BalanceService.StartReconciler(context.Background())

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
