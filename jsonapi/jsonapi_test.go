package jsonapi

// testRegistry mirrors the application join graph: purchase orders and
// payments belong to suppliers, suppliers belong to categories, invoices
// belong to quotes and suppliers.
func testRegistry() *Registry {
	return NewRegistry(
		TypeInfo{
			Name:   "supplier",
			Plural: "suppliers",
			Joins: []JoinSpec{
				{Name: "category", Cardinality: One, ForeignKey: "categoryId", TargetType: "category"},
				{Name: "purchaseOrders", Cardinality: Many, TargetType: "purchaseOrder"},
			},
		},
		TypeInfo{
			Name:   "purchaseOrder",
			Plural: "purchaseOrders",
			Joins: []JoinSpec{
				{Name: "supplier", Cardinality: One, ForeignKey: "supplierId", TargetType: "supplier"},
				{Name: "payments", Cardinality: Many, TargetType: "payment"},
			},
		},
		TypeInfo{
			Name:   "payment",
			Plural: "payments",
			Joins: []JoinSpec{
				{Name: "purchaseOrder", Cardinality: One, ForeignKey: "purchaseOrderId", TargetType: "purchaseOrder"},
				{Name: "supplier", Cardinality: One, ForeignKey: "supplierId", TargetType: "supplier"},
			},
		},
		TypeInfo{
			Name:   "category",
			Plural: "categories",
			Joins: []JoinSpec{
				{Name: "suppliers", Cardinality: Many, TargetType: "supplier"},
			},
		},
		TypeInfo{
			Name:   "quote",
			Plural: "quotes",
			Joins: []JoinSpec{
				{Name: "supplier", Cardinality: One, ForeignKey: "supplierId", TargetType: "supplier"},
			},
		},
		TypeInfo{
			Name:   "invoice",
			Plural: "invoices",
			Joins: []JoinSpec{
				{Name: "quote", Cardinality: One, ForeignKey: "quoteId", TargetType: "quote"},
				{Name: "supplier", Cardinality: One, ForeignKey: "supplierId", TargetType: "supplier"},
			},
		},
	)
}
