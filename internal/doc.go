// Package internal contains the core implementation packages for stanza.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the stanza CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - build: Render pipeline with worker pools, caching, and output writing
//   - config: Configuration management with validation and defaults
//   - content: Markdown parsing, front matter, and the authors file
//   - errors: Structured errors and the per-build error collector
//   - feeds: RSS and Atom feed generation
//   - i18n: Locale set, route prefixes, and UI labels
//   - linkcheck: Internal link and anchor validation of the built site
//   - registry: Content registry and change event broadcasting
//   - renderer: HTML page composition from view data
//   - scaffolding: Starter site generation for stanza init
//   - scanner: Content tree scanning and incremental rescans
//   - server: Development server with WebSocket live reload
//   - watcher: File system monitoring with debouncing
package internal
