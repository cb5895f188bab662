// Package content turns Markdown source documents into renderable page
// metadata and HTML. It handles front matter decoding, slug and date
// derivation from file names, excerpt extraction, Markdown conversion with
// syntax highlighting, and heading anchor collection.
package content

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/types"
)

var frontMatterDelimiter = []byte("---")

// datedFileRe matches blog file names like 2024-03-01-k8s-scheduling.md.
var datedFileRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// FrontMatter is the YAML metadata block prefixed to a Markdown document.
type FrontMatter struct {
	Slug        string     `yaml:"slug"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Authors     StringList `yaml:"authors"`
	Tags        StringList `yaml:"tags"`
	Date        string     `yaml:"date"`
	Draft       bool       `yaml:"draft"`
}

// StringList accepts either a YAML scalar or a sequence, so front matter can
// say "authors: dorian" as well as "authors: [dorian, mira]".
type StringList []string

func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*s = nil
			return nil
		}
		*s = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = StringList(items)
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence, got YAML node kind %d", value.Kind)
	}
}

// SplitFrontMatter separates the leading front matter block from the
// Markdown body. A document without front matter returns nil metadata.
func SplitFrontMatter(source []byte) (meta, body []byte, err error) {
	trimmed := bytes.TrimLeft(source, "\uFEFF")
	if !bytes.HasPrefix(trimmed, frontMatterDelimiter) {
		return nil, source, nil
	}

	rest := trimmed[len(frontMatterDelimiter):]
	if len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return nil, source, nil
	}

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter block")
	}

	meta = rest[:end]
	meta = bytes.TrimPrefix(meta, []byte("\r"))
	meta = bytes.TrimPrefix(meta, []byte("\n"))
	body = rest[end+len("\n---"):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, body, nil
}

// ParseFile reads one Markdown document and produces its page metadata.
// The slug falls back to the file name (minus any date prefix), the date
// falls back to the file name prefix for posts.
func ParseFile(path string, kind types.ContentKind, locale string) (*types.PageInfo, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewContentError("read_source", "reading source file", err).WithLocation(path, 0)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := SplitFrontMatter(source)
	if err != nil {
		return nil, errors.NewContentError("frontmatter_split", err.Error(), nil).WithLocation(path, 1)
	}

	var fm FrontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return nil, errors.NewContentError("frontmatter_parse", "invalid front matter", err).WithLocation(path, 1)
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fileDate, fileSlug := splitDatedName(base)

	slug := fm.Slug
	if slug == "" {
		slug = Slugify(fileSlug)
	}
	if slug == "" {
		return nil, errors.NewContentError("missing_slug", "cannot derive slug", nil).WithLocation(path, 1)
	}

	date, err := resolveDate(fm.Date, fileDate)
	if err != nil {
		return nil, errors.NewContentError("bad_date", err.Error(), nil).WithLocation(path, 1)
	}
	if kind == types.KindPost && date.IsZero() {
		return nil, errors.NewContentError("missing_date", "post has no date in front matter or file name", nil).WithLocation(path, 1)
	}

	title := fm.Title
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = slug
	}

	page := &types.PageInfo{
		Kind:        kind,
		Slug:        slug,
		Locale:      locale,
		Title:       title,
		Description: fm.Description,
		Authors:     []string(fm.Authors),
		Tags:        []string(fm.Tags),
		Date:        date,
		Draft:       fm.Draft,
		SourcePath:  path,
		LastMod:     info.ModTime(),
		Hash:        fmt.Sprintf("%08x", crc32.ChecksumIEEE(source)),
		Raw:         string(body),
	}
	return page, nil
}

// splitDatedName splits "2024-03-01-k8s-scheduling" into its date prefix and
// the remainder. Names without a date prefix return the whole name as slug.
func splitDatedName(base string) (date, slug string) {
	if m := datedFileRe.FindStringSubmatch(base); m != nil {
		return m[1], m[2]
	}
	return "", base
}

func resolveDate(fmDate, fileDate string) (time.Time, error) {
	raw := fmDate
	if raw == "" {
		raw = fileDate
	}
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// firstHeading returns the text of the first level-1 heading in the body.
func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a title or file name into a URL slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Excerpt returns the body up to the truncate marker, or the full body when
// no marker is present.
func Excerpt(body, marker string) string {
	if idx := strings.Index(body, marker); idx >= 0 {
		return strings.TrimSpace(body[:idx])
	}
	return strings.TrimSpace(body)
}
