// pkg/model/document.go
package model

// RawRow is one decoded CSV line keyed by header name. It is consumed
// exactly once by the transformer and never shared across rows.
type RawRow map[string]string

// Document is a transformed record ready for indexing. Absent fields hold
// an untyped nil until Compact removes them; present fields hold a string,
// int, bool, or a "lat,lon" composite.
type Document map[string]interface{}

// Timestamp returns the document's temporal key, or "" when absent.
func (d Document) Timestamp() string {
	ts, _ := d[TimestampField].(string)
	return ts
}

// Compact removes every field still holding the absence sentinel. Called
// after the partition router has consumed the timestamp field.
func (d Document) Compact() Document {
	result := make(Document, len(d))
	for k, v := range d {
		if v != nil {
			result[k] = v
		}
	}
	return result
}
