// Package tasks runs long catalog operations against the remote with real-time progress reporting.
//
// # Import
//
// [Importer.Run] adds a batch of songs through a [SongAdder] (the remote's song API client):
//
//   - Inputs that fail validation are reported without a request
//   - Valid inputs are fed to a pool of workers, one request per song, gated by a token bucket
//   - Partial failures are collected; the run only fails as a whole when its context ends
//
// Ids are assigned by the remote in arrival order, so with more than one worker the ids of imported songs need not
// follow the input order.
//
// # Progress Reporting
//
// Updates are sent on a caller-owned channel with select and default, so a slow reader drops updates instead of
// stalling the import. The [ProgressUpdate] struct contains phase, step counters, a message and optional data.
package tasks
