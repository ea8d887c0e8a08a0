package models

import (
	"context"

	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/jsonapi"
	"github.com/shopspring/decimal"
)

// ResourceHooks are the lifecycle hooks of a resource type. Every type has
// a hook object; the default is a no-op, types override only what they
// need. This replaces runtime "does this callback exist" checks with an
// always-present interface.
type ResourceHooks interface {
	// BeforeCreate and BeforeUpdate may rewrite the inbound resource
	// before it is decoded and persisted.
	BeforeCreate(ctx context.Context, resource *jsonapi.InboundResource) error
	BeforeUpdate(ctx context.Context, resource *jsonapi.InboundResource) error
	// AfterList may decorate the listed records before encoding.
	AfterList(ctx context.Context, records []jsonapi.Record) error
}

// NoopHooks is the default implementation.
type NoopHooks struct{}

func (NoopHooks) BeforeCreate(ctx context.Context, resource *jsonapi.InboundResource) error {
	return nil
}

func (NoopHooks) BeforeUpdate(ctx context.Context, resource *jsonapi.InboundResource) error {
	return nil
}

func (NoopHooks) AfterList(ctx context.Context, records []jsonapi.Record) error {
	return nil
}

type sumRow struct {
	GroupId string
	Total   decimal.Decimal
}

func sumRowsToMap(rows []sumRow) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.GroupId] = row.Total
	}
	return totals
}

// purchase order cost per supplier
func poCostPerSupplier(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&PurchaseOrder{}).
		Select("supplier_id AS group_id, SUM(cost) AS total").
		Where("supplier_id <> ''").
		Group("supplier_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// payment amount per supplier, for payments carrying a direct supplier link
func paymentAmountPerSupplier(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&Payment{}).
		Select("supplier_id AS group_id, SUM(amount) AS total").
		Where("supplier_id <> ''").
		Group("supplier_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// payment amount per supplier, routed through the payment's purchase order
func poPaymentAmountPerSupplier(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&Payment{}).
		Select("purchase_orders.supplier_id AS group_id, SUM(payments.amount) AS total").
		Joins("JOIN purchase_orders ON purchase_orders.id = payments.purchase_order_id").
		Group("purchase_orders.supplier_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// payment amount per purchase order
func paymentAmountPerPo(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&Payment{}).
		Select("purchase_order_id AS group_id, SUM(amount) AS total").
		Where("purchase_order_id <> ''").
		Group("purchase_order_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// purchase order cost per category, through the supplier
func poCostPerCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&PurchaseOrder{}).
		Select("suppliers.category_id AS group_id, SUM(purchase_orders.cost) AS total").
		Joins("JOIN suppliers ON suppliers.id = purchase_orders.supplier_id").
		Group("suppliers.category_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// direct payment amount per category, through the supplier
func paymentAmountPerCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&Payment{}).
		Select("suppliers.category_id AS group_id, SUM(payments.amount) AS total").
		Joins("JOIN suppliers ON suppliers.id = payments.supplier_id").
		Group("suppliers.category_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

// purchase-order payment amount per category, through order and supplier
func poPaymentAmountPerCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []sumRow
	err := config.GetDB().WithContext(ctx).
		Model(&Payment{}).
		Select("suppliers.category_id AS group_id, SUM(payments.amount) AS total").
		Joins("JOIN purchase_orders ON purchase_orders.id = payments.purchase_order_id").
		Joins("JOIN suppliers ON suppliers.id = purchase_orders.supplier_id").
		Group("suppliers.category_id").
		Scan(&rows).Error
	return sumRowsToMap(rows), err
}

func recordDecimal(record jsonapi.Record, field string) decimal.Decimal {
	switch v := record[field].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SupplierHooks adds totalPaid/totalDebt to listed suppliers.
type SupplierHooks struct {
	NoopHooks
}

func (SupplierHooks) AfterList(ctx context.Context, records []jsonapi.Record) error {
	poCost, err := poCostPerSupplier(ctx)
	if err != nil {
		return err
	}
	directPaid, err := paymentAmountPerSupplier(ctx)
	if err != nil {
		return err
	}
	poPaid, err := poPaymentAmountPerSupplier(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		id := record.ID()
		// paid with a purchase order plus paid without one
		record["totalPaid"] = directPaid[id].Add(poPaid[id])
		// outstanding purchase order cost, never negative
		record["totalDebt"] = maxZero(poCost[id].Sub(poPaid[id]))
	}
	return nil
}

// PurchaseOrderHooks adds totalPaid/totalDebt to listed purchase orders.
type PurchaseOrderHooks struct {
	NoopHooks
}

func (PurchaseOrderHooks) AfterList(ctx context.Context, records []jsonapi.Record) error {
	paid, err := paymentAmountPerPo(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		id := record.ID()
		record["totalPaid"] = paid[id]
		record["totalDebt"] = maxZero(recordDecimal(record, "cost").Sub(paid[id]))
	}
	return nil
}

// CategoryHooks adds totalCommitted/totalPaid/balance to listed categories.
type CategoryHooks struct {
	NoopHooks
}

func (CategoryHooks) AfterList(ctx context.Context, records []jsonapi.Record) error {
	poCost, err := poCostPerCategory(ctx)
	if err != nil {
		return err
	}
	directPaid, err := paymentAmountPerCategory(ctx)
	if err != nil {
		return err
	}
	poPaid, err := poPaymentAmountPerCategory(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		id := record.ID()
		record["totalCommitted"] = poCost[id]
		record["totalPaid"] = directPaid[id].Add(poPaid[id])
		// budget minus outstanding orders and direct payments
		record["balance"] = recordDecimal(record, "budget").Sub(poCost[id]).Sub(directPaid[id])
	}
	return nil
}
