// Package record defines the synchronized record model and its on-disk codec.
//
// A record is one workflow or credential definition, identified by a stable
// id assigned by the remote instance. On disk each record lives in a JSON
// file named {id}-{slug(name)}.json; legacy array-format files holding many
// records are tolerated on decode and modeled as an explicit file shape
// rather than ad-hoc sniffing at call sites.
//
// Decode and encode round-trip a record's id and payload: the payload body
// is carried as raw JSON and only re-indented on write, never restructured.
package record
