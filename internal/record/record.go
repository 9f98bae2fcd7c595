package record

import (
	"encoding/json"
	"fmt"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
)

// Kind identifies the type of record being synchronized.
type Kind string

const (
	KindWorkflow   Kind = "workflow"
	KindCredential Kind = "credential"
)

// Dir returns the conventional subdirectory name for this kind inside a data root.
func (k Kind) Dir() string {
	return string(k) + "s"
}

// Record is one workflow or credential definition. The ID is assigned by the
// remote instance on first creation and is never generated or altered locally;
// it is the sole join key between local and remote state. Payload holds the
// full definition body exactly as read, including the encrypted data blob for
// credentials.
type Record struct {
	ID      string
	Name    string
	Payload json.RawMessage

	// Source is the local file (plus "#index" for legacy array files) the
	// record was decoded from. Empty for records fetched from the remote.
	Source string
}

// Summary is the metadata-only view of a remote record, as returned by the
// catalog listing. Listing never transfers full payloads.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// header is the subset of a record body needed for identification.
type header struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

// flexString decodes a JSON string or number into a string. Old workflow
// exports carry numeric ids; the remote treats both forms as the same token.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// Parse builds a Record from a raw JSON object, keeping the payload bytes
// untouched. A missing id is allowed (the remote assigns one on create);
// a structurally invalid body is a malformed record.
func Parse(raw json.RawMessage) (Record, error) {
	if !isObject(raw) {
		return Record{}, fmt.Errorf("%w: not a JSON object", syncerrors.ErrMalformedRecord)
	}
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return Record{}, fmt.Errorf("%w: %v", syncerrors.ErrMalformedRecord, err)
	}
	return Record{
		ID:      string(h.ID),
		Name:    h.Name,
		Payload: raw,
	}, nil
}

// isObject reports whether raw starts a JSON object once whitespace is skipped.
func isObject(raw []byte) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
