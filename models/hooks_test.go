package models

import (
	"context"
	"testing"

	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/jsonapi"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Category{}, &Supplier{}, &PurchaseOrder{}, &Payment{}, &User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.SetDB(db)
}

func seedFixture(t *testing.T) (category Category, supplier Supplier, po PurchaseOrder) {
	t.Helper()
	db := config.GetDB()

	category = Category{Name: "Utilities", Budget: decimal.NewFromInt(500)}
	if err := db.Create(&category).Error; err != nil {
		t.Fatal(err)
	}
	supplier = Supplier{Name: "ACME", Email: "acme@example.com", CategoryId: category.ID}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatal(err)
	}
	po = PurchaseOrder{Delivery: "D", Cost: decimal.NewFromInt(100), SupplierId: supplier.ID}
	if err := db.Create(&po).Error; err != nil {
		t.Fatal(err)
	}
	payments := []Payment{
		{Amount: decimal.NewFromInt(30), PurchaseOrderId: po.ID},
		{Amount: decimal.NewFromInt(20), SupplierId: supplier.ID},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatal(err)
		}
	}
	return category, supplier, po
}

func listRecords(t *testing.T, model interface{}) []jsonapi.Record {
	t.Helper()
	records, err := jsonapi.ToRecords([]interface{}{model})
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func assertDecimal(t *testing.T, record jsonapi.Record, field string, expected int64) {
	t.Helper()
	value, ok := record[field].(decimal.Decimal)
	if !ok {
		t.Fatalf("%s is %T, expected decimal", field, record[field])
	}
	if !value.Equal(decimal.NewFromInt(expected)) {
		t.Fatalf("%s expected %d, got %s", field, expected, value)
	}
}

func TestSupplierAfterListTotals(t *testing.T) {
	setupTestDB(t)
	_, supplier, _ := seedFixture(t)

	records := listRecords(t, supplier)
	if err := (SupplierHooks{}).AfterList(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	// 20 paid directly plus 30 through the purchase order
	assertDecimal(t, records[0], "totalPaid", 50)
	// 100 committed minus 30 paid through the order
	assertDecimal(t, records[0], "totalDebt", 70)
}

func TestPurchaseOrderAfterListTotals(t *testing.T) {
	setupTestDB(t)
	_, _, po := seedFixture(t)

	records := listRecords(t, po)
	if err := (PurchaseOrderHooks{}).AfterList(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	assertDecimal(t, records[0], "totalPaid", 30)
	assertDecimal(t, records[0], "totalDebt", 70)
}

func TestPurchaseOrderDebtNeverNegative(t *testing.T) {
	setupTestDB(t)
	db := config.GetDB()

	po := PurchaseOrder{Delivery: "cheap", Cost: decimal.NewFromInt(10)}
	if err := db.Create(&po).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&Payment{Amount: decimal.NewFromInt(25), PurchaseOrderId: po.ID}).Error; err != nil {
		t.Fatal(err)
	}

	records := listRecords(t, po)
	if err := (PurchaseOrderHooks{}).AfterList(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, records[0], "totalDebt", 0)
}

func TestCategoryAfterListTotals(t *testing.T) {
	setupTestDB(t)
	category, _, _ := seedFixture(t)

	records := listRecords(t, category)
	if err := (CategoryHooks{}).AfterList(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	assertDecimal(t, records[0], "totalCommitted", 100)
	assertDecimal(t, records[0], "totalPaid", 50)
	// 500 budget minus 100 committed minus 20 paid outside orders
	assertDecimal(t, records[0], "balance", 380)
}

func TestNoopHooksDoNothing(t *testing.T) {
	records := []jsonapi.Record{{"id": "x"}}
	if err := (NoopHooks{}).AfterList(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	if len(records[0]) != 1 {
		t.Fatalf("noop hook mutated the record: %v", records[0])
	}
}
