// Package vault is the HTTP client for the Vault KV v2 secret store.
//
// Secrets are addressed by group path (engine plus path, e.g.
// secret/team/development). Reads return every value in the group;
// writes are JSON merge patches that touch only the submitted names.
//
// Non-success responses become *Error values whose Kind tells the caller
// what went wrong and whose Hint tells the user what to do about it.
package vault
