// Package creds decrypts exported credential data blobs.
//
// Credential payloads carry their data field encrypted with the source
// instance's encryption key. The blobs are portable only between instances
// sharing the same key; this package turns them into plaintext data objects
// the public API accepts, given that key. The key itself is always supplied
// by the environment and never stored.
package creds
