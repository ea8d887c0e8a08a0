package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string column stored as JSON text.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot convert %T to StringList", value)
	}
}

// AttachmentInfo is the durable result of committing a staged attachment:
// the drive file id and url plus size and preview. It is persisted as a
// plain attribute on the owning record, never as a relationship.
type AttachmentInfo struct {
	FileId  string `json:"fileId"`
	Url     string `json:"url"`
	Size    int64  `json:"size"`
	Preview string `json:"preview"`
}

// Value implements the driver.Valuer interface
func (a AttachmentInfo) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements the sql.Scanner interface
func (a *AttachmentInfo) Scan(value interface{}) error {
	if value == nil {
		*a = AttachmentInfo{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, a)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot convert %T to AttachmentInfo", value)
	}
}
