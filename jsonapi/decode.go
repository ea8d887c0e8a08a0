package jsonapi

import "encoding/json"

// Document is an inbound request body: {data: {...}}.
type Document struct {
	Data *InboundResource `json:"data"`
}

// InboundResource is a wire resource as received on create/update.
// Relationships are kept raw so the decoder can tell one-refs from arrays.
type InboundResource struct {
	Type          string                     `json:"type"`
	ID            string                     `json:"id"`
	Attributes    map[string]interface{}     `json:"attributes"`
	Relationships map[string]json.RawMessage `json:"relationships"`
}

// Relationship returns the decoded to-one relationship by name, if present.
func (r *InboundResource) Relationship(name string) (RelationshipRef, bool) {
	raw, ok := r.Relationships[name]
	if !ok {
		return RelationshipRef{}, false
	}
	var ref RelationshipRef
	if err := json.Unmarshal(raw, &ref); err != nil || ref.Data.ID == "" {
		return RelationshipRef{}, false
	}
	return ref, true
}

// DropRelationship removes a relationship from the inbound resource. Used
// for relationships that are not persisted as foreign keys (staged
// attachments are committed separately and stored as a plain attribute).
func (r *InboundResource) DropRelationship(name string) {
	delete(r.Relationships, name)
}

// Decode converts an inbound resource into a flat attribute map suitable
// for an ORM write. Every to-one relationship becomes a "<name>Id" foreign
// key entry. To-many relationships are silently ignored: the store only
// persists scalar foreign keys on the owning side, so there is nothing to
// write them to. That asymmetry with Encode is deliberate.
func Decode(resource *InboundResource) map[string]interface{} {
	record := map[string]interface{}{}
	for name, value := range resource.Attributes {
		record[name] = value
	}
	for name := range resource.Relationships {
		if ref, ok := resource.Relationship(name); ok {
			record[name+"Id"] = ref.Data.ID
		}
	}
	return record
}
