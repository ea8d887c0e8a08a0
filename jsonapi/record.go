package jsonapi

import (
	"encoding/json"
	"fmt"
)

// Record is an ORM row as seen by the serializer: a flat attribute map
// plus, after eager loading, relationship fields populated with nested
// records. The serializer only reads records, it never mutates them.
type Record map[string]interface{}

// ID returns the record id as a string, or "" when absent.
func (r Record) ID() string {
	return stringID(r["id"])
}

// ToRecord converts a model struct into a Record through its json tags,
// so the serializer sees exactly the wire field names. Relationship
// fields must be tagged with the relationship name and omitempty so an
// unloaded join is simply absent from the map.
func ToRecord(model interface{}) (Record, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// ToRecords converts a slice of model structs.
func ToRecords[T any](models []T) ([]Record, error) {
	records := make([]Record, 0, len(models))
	for i := range models {
		record, err := ToRecord(models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func stringID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		// json round-tripped numeric id
		return fmt.Sprintf("%v", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// relatedRecords normalizes a relationship field value into a list of
// records. An absent or unpopulated field is "no related records", not an
// error (partially loaded graphs are fine).
func relatedRecords(v interface{}) []Record {
	switch val := v.(type) {
	case nil:
		return nil
	case Record:
		return []Record{val}
	case map[string]interface{}:
		return []Record{Record(val)}
	case []Record:
		return val
	case []interface{}:
		records := make([]Record, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				records = append(records, Record(m))
			}
		}
		return records
	default:
		return nil
	}
}
