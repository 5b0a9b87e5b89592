// Package domain holds the core data model shared across the engine:
// execution state, the session interaction log, parsed decisions, and
// lifecycle events. It has no dependencies on other espalier packages.
package domain
