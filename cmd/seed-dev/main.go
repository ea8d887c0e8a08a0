// seed-dev populates a development database with a small expense graph:
// one user, two categories, two suppliers, purchase orders and payments.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const devEmail = "dev@example.com"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	if _, err := models.GetUserByEmail(ctx, devEmail); err == nil {
		fmt.Println("dev data already seeded, nothing to do")
		return
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{Name: "Dev Owner", Email: devEmail}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		utilities := models.Category{Name: "Utilities", Budget: decimal.NewFromInt(2000)}
		materials := models.Category{Name: "Materials", Budget: decimal.NewFromInt(5000)}
		for _, c := range []*models.Category{&utilities, &materials} {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		acme := models.Supplier{
			Name:         "ACME Plumbing",
			Email:        "billing@acme.example.com",
			PhoneNumbers: models.StringList{"555-0100", "555-0101"},
			CategoryId:   utilities.ID,
		}
		pipeco := models.Supplier{
			Name:       "PipeCo",
			Email:      "sales@pipeco.example.com",
			CategoryId: materials.ID,
		}
		for _, s := range []*models.Supplier{&acme, &pipeco} {
			if err := tx.Create(s).Error; err != nil {
				return err
			}
		}

		po := models.PurchaseOrder{
			Delivery:   "Copper pipes, 40m",
			Cost:       decimal.NewFromInt(750),
			SupplierId: pipeco.ID,
		}
		if err := tx.Create(&po).Error; err != nil {
			return err
		}

		payments := []models.Payment{
			{Amount: decimal.NewFromInt(300), Description: "PO deposit", PurchaseOrderId: po.ID},
			{Amount: decimal.NewFromInt(120), Description: "Monthly service", SupplierId: acme.ID},
		}
		for i := range payments {
			if err := tx.Create(&payments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded dev data for %s\n", devEmail)
}
