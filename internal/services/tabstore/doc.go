// Package tabstore provides the HTTP client for the remote spreadsheet-like
// store. Each category's CSV lands in a named tab; the client exposes just
// the three operations the sync pass needs: ensure, clear, write.
package tabstore
