package creds

import (
	"encoding/json"
	"sort"
)

// Schema is the credential type schema the public API serves under
// /api/v1/credentials/schema/{type}. Only the pieces needed to shape an
// import payload are decoded.
type Schema struct {
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

// SchemaProperty describes one field of a credential type.
type SchemaProperty struct {
	Default json.RawMessage `json:"default"`
}

// Sanitize returns a copy of data restricted to the fields the schema
// declares, with schema defaults filled in for fields the input omits. The
// public API rejects payloads carrying fields outside the schema, which
// exported credentials often do (OAuth session tokens and the like).
func (s *Schema) Sanitize(data map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.Properties))
	for name, prop := range s.Properties {
		if v, ok := data[name]; ok {
			out[name] = v
			continue
		}
		if len(prop.Default) > 0 {
			out[name] = prop.Default
		}
	}
	return out
}

// MissingRequired lists the schema's required fields that are absent from
// data, sorted for stable messages. A credential missing any of them cannot
// be created through the public API and should be skipped.
func (s *Schema) MissingRequired(data map[string]json.RawMessage) []string {
	var missing []string
	for _, name := range s.Required {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
