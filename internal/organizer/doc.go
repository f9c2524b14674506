// Package organizer turns a messy staging directory of scraped CSV downloads
// into a stable per-category layout. Each pass classifies recent files,
// promotes the newest file per category to a fixed <category>_latest.csv
// path, and retires the file it replaces as a timestamped snapshot.
package organizer
