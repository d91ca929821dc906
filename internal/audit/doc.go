// Package audit records pushes to the secret store.
//
// Every confirmed push appends one entry to a per-user log so a developer
// can see what they sent to the store and when. The log lives at:
//
//	$XDG_STATE_HOME/confvault/audit.jsonl
//
// Each entry contains:
//   - A random ID (UUID v4)
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name
//   - Locator, local file and value size
//
// # Failure Handling
//
// Audit logging is best-effort. Append returns an error so the caller can
// warn about it, but a push that reached the store is never reported as
// failed because its audit entry could not be written.
//
// # Reading Logs
//
// Use Trail.Entries to read the log for display. Malformed lines are
// silently skipped to handle partial writes.
package audit
