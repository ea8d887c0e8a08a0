package jsonapi

// TypedRecord pairs a record with its wire type; the flattener needs the
// type to follow the right joins and the deduplicator keys on (type, id).
type TypedRecord struct {
	Type   string
	Record Record
}

// Typed tags a homogeneous record list with its type.
func Typed(records []Record, typeName string) []TypedRecord {
	typed := make([]TypedRecord, 0, len(records))
	for _, r := range records {
		typed = append(typed, TypedRecord{Type: typeName, Record: r})
	}
	return typed
}

// Flatten walks the loaded relationship fields of every root record,
// depth-first, and collects every related record reachable through
// declared joins. Nested joins are discovered before the directly joined
// record is appended. Traversal only follows fields actually populated by
// the eager load, so it is bounded by the include tree depth even when the
// type graph itself has cycles.
//
// The result still contains duplicates; callers dedupe with Dedupe.
func Flatten(roots []Record, typeName string, registry *Registry) []TypedRecord {
	var extracted []TypedRecord
	extractJoined(roots, typeName, registry, &extracted)
	return extracted
}

func extractJoined(records []Record, typeName string, registry *Registry, extracted *[]TypedRecord) {
	info, ok := registry.Type(typeName)
	if !ok {
		return
	}
	for _, record := range records {
		for _, join := range info.Joins {
			joined := relatedRecords(record[join.Name])
			if len(joined) == 0 {
				continue
			}
			// extract the joined records' own joins first
			extractJoined(joined, join.TargetType, registry, extracted)
			for _, j := range joined {
				*extracted = append(*extracted, TypedRecord{Type: join.TargetType, Record: j})
			}
		}
	}
}

// Dedupe removes duplicate (type, id) entries. Order of first appearance
// is kept; a later duplicate replaces the stored record (last write wins,
// harmless because encoding the same id always yields identical output).
func Dedupe(records []TypedRecord) []TypedRecord {
	type key struct {
		typ string
		id  string
	}
	index := make(map[key]int, len(records))
	deduped := make([]TypedRecord, 0, len(records))
	for _, tr := range records {
		k := key{typ: tr.Type, id: tr.Record.ID()}
		if at, ok := index[k]; ok {
			deduped[at] = tr
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, tr)
	}
	return deduped
}
