// Package notifications delivers pipeline events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Run and error
// notifications can be toggled independently.
package notifications
