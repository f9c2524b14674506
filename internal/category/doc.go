// Package category defines the fixed set of data-source identities and the
// ordered classification rules that assign raw downloads to them.
package category
