package router

import "encoding/json"

// Document is a leniently parsed payload object. Accessors return zero values
// for absent or mistyped fields; client sloppiness surfaces as precondition
// errors downstream, never as a decode failure here.
type Document map[string]json.RawMessage

// ParseDocument reads raw JSON into a Document. Anything that is not an
// object (including nothing at all) yields an empty document.
func ParseDocument(raw json.RawMessage) Document {
	if len(raw) == 0 {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return Document{}
	}
	return doc
}

// GetString returns the string value under key, or "" if absent or not a string.
func (d Document) GetString(key string) string {
	raw, ok := d[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// GetBool returns the bool value under key, or def if absent or not a bool.
func (d Document) GetBool(key string, def bool) bool {
	raw, ok := d[key]
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return def
	}
	return b
}

// Without returns a copy of the document with the given keys removed.
func (d Document) Without(keys ...string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
