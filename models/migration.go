package models

import (
	"log"

	"github.com/povertyhq/poverty_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Category{}, &Supplier{}, &PurchaseOrder{}, &Payment{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
