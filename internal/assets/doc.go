// Package assets implements the repositories behind the admin workspace and
// the public views: one service per asset kind (photos, videos, service
// offerings and categories).
//
// Mutations that carry a file run in two phases. The file is uploaded to
// blob storage first and the row is written second; the second phase is
// skipped when the upload fails. The phases are not atomic: a write
// failure after a successful upload leaves an orphaned blob, which is
// logged and never retried. Every successful mutation publishes an Event
// so subscribers can drop their cached lists.
package assets
