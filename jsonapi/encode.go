package jsonapi

// ResourceIdentifier is the {type, id} pair used inside relationships.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipRef wraps an identifier the way the wire format expects.
type RelationshipRef struct {
	Data ResourceIdentifier `json:"data"`
}

// Resource is the externally visible representation of a record. A to-one
// relationship is a single RelationshipRef, a to-many relationship is a
// []RelationshipRef.
type Resource struct {
	Type          string                 `json:"type"`
	ID            string                 `json:"id"`
	Attributes    map[string]interface{} `json:"attributes"`
	Relationships map[string]interface{} `json:"relationships,omitempty"`
}

// Envelope is the response body: primary data plus the deduplicated
// transitive closure of everything reachable through declared joins.
type Envelope struct {
	Data     interface{} `json:"data"`
	Included []Resource  `json:"included"`
}

// Encode converts records into wire resources, applying the per-type field
// selectors. Encoding is pure: the same record always encodes to the same
// resource, which is what makes last-write-wins dedup safe.
func Encode(records []TypedRecord, registry *Registry, fields map[string]FieldSelector) []Resource {
	resources := make([]Resource, 0, len(records))
	for _, tr := range records {
		resources = append(resources, encodeOne(tr, registry, fields))
	}
	return resources
}

func encodeOne(tr TypedRecord, registry *Registry, fields map[string]FieldSelector) Resource {
	info, _ := registry.Type(tr.Type)
	record := tr.Record

	resource := Resource{
		Type:       tr.Type,
		ID:         record.ID(),
		Attributes: recordAttributes(record, info, fields[tr.Type]),
	}
	if info == nil {
		return resource
	}

	for _, join := range info.Joins {
		switch join.Cardinality {
		case One:
			// the ref comes from the foreign key itself, so a to-one
			// relationship is present even when the join wasn't loaded
			id := stringID(record[join.ForeignKey])
			if id == "" {
				if nested := relatedRecords(record[join.Name]); len(nested) == 1 {
					id = nested[0].ID()
				}
			}
			if id == "" {
				continue
			}
			delete(resource.Attributes, join.ForeignKey)
			if resource.Relationships == nil {
				resource.Relationships = map[string]interface{}{}
			}
			resource.Relationships[join.Name] = RelationshipRef{
				Data: ResourceIdentifier{Type: join.TargetType, ID: id},
			}
		case Many:
			for _, joined := range relatedRecords(record[join.Name]) {
				if resource.Relationships == nil {
					resource.Relationships = map[string]interface{}{}
				}
				refs, _ := resource.Relationships[join.Name].([]RelationshipRef)
				refs = append(refs, RelationshipRef{
					Data: ResourceIdentifier{Type: join.TargetType, ID: joined.ID()},
				})
				resource.Relationships[join.Name] = refs
			}
		}
	}
	return resource
}

// recordAttributes projects the record fields into wire attributes. The id,
// every relationship field and every declared foreign key never appear as
// attributes regardless of the selector.
func recordAttributes(record Record, info *TypeInfo, selector FieldSelector) map[string]interface{} {
	attributes := map[string]interface{}{}

	if !selector.isZero() && !selector.exclude {
		for name := range selector.names {
			if value, ok := record[name]; ok {
				attributes[name] = value
			}
		}
		stripJoinFields(attributes, info)
		return attributes
	}

	for name, value := range record {
		if name == "id" {
			continue
		}
		if !selector.isZero() && !selector.selected(name) {
			continue
		}
		attributes[name] = value
	}
	stripJoinFields(attributes, info)
	return attributes
}

func stripJoinFields(attributes map[string]interface{}, info *TypeInfo) {
	if info == nil {
		return
	}
	for _, join := range info.Joins {
		delete(attributes, join.Name)
		if join.ForeignKey != "" {
			delete(attributes, join.ForeignKey)
		}
	}
}

// BuildEnvelope flattens the join graph of the root records, dedupes it by
// (type, id) and encodes roots and included set. When single is true the
// data member is a lone resource instead of an array.
func BuildEnvelope(roots []Record, typeName string, registry *Registry, fields map[string]FieldSelector, single bool) Envelope {
	included := Encode(Dedupe(Flatten(roots, typeName, registry)), registry, fields)
	data := Encode(Typed(roots, typeName), registry, fields)

	envelope := Envelope{Included: included}
	if single && len(data) > 0 {
		envelope.Data = data[0]
	} else {
		envelope.Data = data
	}
	return envelope
}
