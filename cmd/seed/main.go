package main

import (
	"log"
	"os"
	"time"

	"flowcredits-be/internal/model"
	"flowcredits-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds a demo tenant with a balance alert policy so the API is usable
// right after migration. Idempotent, safe to re-run.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding Flow Credits demo data\n")

	tenantStr := os.Getenv("SEED_TENANT_ID")
	if tenantStr == "" {
		tenantStr = "00000000-0000-0000-0000-000000000001"
	}
	tenantId, err := uuid.Parse(tenantStr)
	if err != nil {
		log.Fatalf("Error: invalid SEED_TENANT_ID: %v", err)
	}

	color.Yellow("[1] Credit policy for tenant %s", tenantId)
	var existing model.CreditPolicy
	if err := db.Where("tenant_id = ?", tenantId).First(&existing).Error; err == nil {
		color.Green("Policy already exists, skipping")
	} else {
		now := time.Now()
		policy := model.CreditPolicy{
			TenantId:               tenantId,
			LowThreshold:           100,
			CriticalThreshold:      20,
			AutoReplenishEnabled:   true,
			AutoReplenishThreshold: 50,
			AutoReplenishQuantity:  500,
			PaymentMethod:          "internal",
			Currency:               "IDR",
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := db.Create(&policy).Error; err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Created policy (low=100, critical=20, auto-replenish 500 @ <=50)")
	}

	color.Yellow("[2] Empty balance snapshot")
	var balance model.ClientBalance
	if err := db.Where("tenant_id = ?", tenantId).First(&balance).Error; err == nil {
		color.Green("Balance snapshot already exists, skipping")
	} else {
		if err := db.Create(&model.ClientBalance{TenantId: tenantId, UpdatedAt: time.Now()}).Error; err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Created zero balance snapshot")
	}

	color.Cyan("\nDone. Purchase credits through POST /api/credits/purchase to fund the tenant.")
}
