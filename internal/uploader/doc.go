// Package uploader syncs each category's Latest CSV to its mapped tab in the
// remote store. Categories are isolated from one another: a failing upload
// never blocks the rest, and every outcome lands in the manifest.
package uploader
