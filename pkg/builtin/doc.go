// Package builtin provides the leaf functions shipped with weft: store
// access, environment lookup, logging, delays and persistent memory.
package builtin
