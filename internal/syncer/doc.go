// Package syncer contains the idempotent import/export engines.
//
// The importer classifies local records against a fresh snapshot of the
// remote catalog (create when the id is unknown remotely, update when it is
// known), guarded by configurable minimum-count thresholds and an optional
// readiness wait. The exporter mirrors remote state into local files, with
// optional pruning of files whose ids disappeared remotely. Both engines run
// sequentially in ascending-id order, are idempotent across re-runs, and
// share their classification path with the dry-run reporter so a dry run
// shows exactly what a real run would do.
//
// All remote access goes through the API interface, which the n8n client
// implements and tests replace with fakes.
package syncer
