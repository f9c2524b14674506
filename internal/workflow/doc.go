// Package workflow orchestrates full pipeline passes: optional new-week
// cleanup, organizing staged downloads, syncing to the remote store, then
// persisting the manifest, recording run history, and notifying.
package workflow
