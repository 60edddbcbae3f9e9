// Package repositories implements SQLite persistence for the few values songbook keeps across restarts.
//
// The song catalog itself is never persisted. The only durable state is a set of named storage slots:
//   - [StorageRepository] : key/value rows in the storage table (get, set, remove, list keys)
//   - [Slot] : a single key of a [StorageRepository], used as the session token slot
//
// Slot keys default to "token" for the local session and "remote_token" for the API client's bearer token.
package repositories
