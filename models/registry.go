package models

import "github.com/povertyhq/poverty_backend/jsonapi"

// BuildRegistry declares the join graph once at startup. The registry is
// immutable and injected into the serializer, never reached through
// package globals.
func BuildRegistry() *jsonapi.Registry {
	return jsonapi.NewRegistry(
		jsonapi.TypeInfo{
			Name:   "supplier",
			Plural: "suppliers",
			Joins: []jsonapi.JoinSpec{
				{Name: "category", Cardinality: jsonapi.One, ForeignKey: "categoryId", TargetType: "category"},
				{Name: "purchaseOrders", Cardinality: jsonapi.Many, TargetType: "purchaseOrder"},
				{Name: "payments", Cardinality: jsonapi.Many, TargetType: "payment"},
			},
		},
		jsonapi.TypeInfo{
			Name:   "purchaseOrder",
			Plural: "purchaseOrders",
			Joins: []jsonapi.JoinSpec{
				{Name: "supplier", Cardinality: jsonapi.One, ForeignKey: "supplierId", TargetType: "supplier"},
				{Name: "payments", Cardinality: jsonapi.Many, TargetType: "payment"},
			},
		},
		jsonapi.TypeInfo{
			Name:   "payment",
			Plural: "payments",
			Joins: []jsonapi.JoinSpec{
				{Name: "purchaseOrder", Cardinality: jsonapi.One, ForeignKey: "purchaseOrderId", TargetType: "purchaseOrder"},
				{Name: "supplier", Cardinality: jsonapi.One, ForeignKey: "supplierId", TargetType: "supplier"},
			},
		},
		jsonapi.TypeInfo{
			Name:   "category",
			Plural: "categories",
			Joins: []jsonapi.JoinSpec{
				{Name: "suppliers", Cardinality: jsonapi.Many, TargetType: "supplier"},
			},
		},
	)
}
