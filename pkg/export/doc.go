// Package export renders a World snapshot to the on-disk formats a
// headless run or replay viewer consumes: plain JSON, a Tiled TMJ map of
// the warehouse layout, and a static top-down SVG visualization.
//
// The package offers both formatted (indented) and compact JSON export to
// accommodate different use cases, from human-readable output to
// space-efficient storage.
package export
