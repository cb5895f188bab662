// Package types provides common type definitions used throughout the Stanza CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import "time"

// ContentKind distinguishes the two classes of source documents.
type ContentKind string

const (
	// KindPost is a dated blog entry under the blog content directory.
	KindPost ContentKind = "post"
	// KindPage is a standalone page such as the about page.
	KindPage ContentKind = "page"
)

// PageInfo contains metadata about a discovered Markdown document, extracted
// from its front matter and file location. It is the unit the scanner,
// registry, and build pipeline pass around.
type PageInfo struct {
	// Kind classifies the document (post or page)
	Kind ContentKind
	// Slug is the locale-scoped identifier; localized counterparts of the
	// same document share a slug
	Slug string
	// Locale is the BCP 47 language tag of the document (e.g., "en", "de")
	Locale string
	// Title is the display title from front matter
	Title string
	// Description is a short summary used for meta tags and feeds
	Description string
	// Authors lists author keys resolved against the site's authors file
	Authors []string
	// Tags lists tag labels; each produces a tag page entry
	Tags []string
	// Date is the publication date for posts (zero for pages)
	Date time.Time
	// Draft excludes the document from production builds
	Draft bool
	// SourcePath is the path to the Markdown file
	SourcePath string
	// Route is the site-relative output route (e.g., "/blog/k8s-scheduling/")
	Route string
	// LastMod tracks the source file modification time for change detection
	LastMod time.Time
	// Hash is a CRC32 checksum of the source for efficient change detection
	Hash string
	// Raw is the Markdown body with front matter stripped
	Raw string
	// Excerpt is the body up to the truncate marker, used on index pages
	Excerpt string
	// Anchors lists heading anchor IDs generated for the rendered document
	Anchors []string
}

// Author describes one entry of the site's authors file.
type Author struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Image string `yaml:"image_url"`
}

// EventType represents the type of content change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// ContentEvent represents a change in the content registry, used for
// real-time notifications to watchers like the development server.
type ContentEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Page contains the document information (may be nil for removed events)
	Page *PageInfo
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
