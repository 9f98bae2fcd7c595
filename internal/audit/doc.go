// Package audit maintains a JSON Lines trail of sync runs.
//
// Each import or export appends one entry to .n8nsync/audit.jsonl under the
// data root, recording the operation, target host, and counts. The log is
// append-only, best-effort, and readable with the data log command.
package audit
