// Package config provides configuration management for Stanza sites using
// Viper for flexible configuration loading from files, environment variables,
// and command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with STANZA_ prefix, validation, and security checks. It manages the site
// identity (title, tagline, base URL), navigation and footer structure,
// locale set, blog options, theming defaults, and the broken-link policy.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/stanza-dev/stanza/internal/errors"
)

// Link policies control how the link checker reports a broken reference.
const (
	PolicyIgnore = "ignore"
	PolicyWarn   = "warn"
	PolicyThrow  = "throw"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Navbar  NavbarConfig  `yaml:"navbar"`
	Footer  FooterConfig  `yaml:"footer"`
	Theme   ThemeConfig   `yaml:"theme"`
	Blog    BlogConfig    `yaml:"blog"`
	I18n    I18nConfig    `yaml:"i18n"`
	Build   BuildConfig   `yaml:"build"`
	Server  ServerConfig  `yaml:"server"`
	Links   LinksConfig   `yaml:"links"`
	Feature []FeatureItem `yaml:"features"`
}

type SiteConfig struct {
	Title        string `yaml:"title"`
	Tagline      string `yaml:"tagline"`
	URL          string `yaml:"url"`
	BaseURL      string `yaml:"base_url"`
	Organization string `yaml:"organization"`
	Favicon      string `yaml:"favicon"`
}

type NavbarConfig struct {
	Title string       `yaml:"title"`
	Logo  string       `yaml:"logo"`
	Items []NavbarItem `yaml:"items"`
}

type NavbarItem struct {
	Label    string `yaml:"label"`
	To       string `yaml:"to"`
	Href     string `yaml:"href"`
	Position string `yaml:"position"`
}

type FooterConfig struct {
	Style     string        `yaml:"style"`
	Copyright string        `yaml:"copyright"`
	Groups    []FooterGroup `yaml:"groups"`
}

type FooterGroup struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
}

type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to"`
	Href  string `yaml:"href"`
}

type ThemeConfig struct {
	DefaultMode         string   `yaml:"default_mode"`
	RespectOSPreference bool     `yaml:"respect_os_preference"`
	DisableSwitch       bool     `yaml:"disable_switch"`
	Announcement        string   `yaml:"announcement"`
	HighlightStyle      string   `yaml:"highlight_style"`
	HighlightLanguages  []string `yaml:"highlight_languages"`
	CustomCSS           string   `yaml:"custom_css"`
}

type BlogConfig struct {
	Dir            string   `yaml:"dir"`
	RouteBase      string   `yaml:"route_base"`
	PostsPerPage   int      `yaml:"posts_per_page"`
	AuthorsFile    string   `yaml:"authors_file"`
	Feeds          []string `yaml:"feeds"`
	FeedLimit      int      `yaml:"feed_limit"`
	TruncateMarker string   `yaml:"truncate_marker"`
}

type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

type BuildConfig struct {
	ContentDir string   `yaml:"content_dir"`
	PagesDir   string   `yaml:"pages_dir"`
	StaticDir  string   `yaml:"static_dir"`
	OutputDir  string   `yaml:"output_dir"`
	Workers    int      `yaml:"workers"`
	Drafts     bool     `yaml:"drafts"`
	Ignore     []string `yaml:"ignore"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Open           bool     `yaml:"open"`
	NoOpen         bool     `yaml:"no-open"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LinksConfig struct {
	OnBrokenLinks   string `yaml:"on_broken_links"`
	OnBrokenAnchors string `yaml:"on_broken_anchors"`
}

// FeatureItem mirrors one homepage feature card entry as declared in the
// site configuration. Declaration order is display order.
type FeatureItem struct {
	Title       string `yaml:"title"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

func Load() (*Config, error) {
	var config Config
	// The config structs carry yaml tags; point the decoder at them so
	// multi-word keys like default_mode and on_broken_links bind.
	if err := viper.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, errors.NewConfigError("decode", "decoding configuration", err)
	}

	// Handle slices set via viper (workaround for viper slice handling)
	if viper.IsSet("i18n.locales") && len(config.I18n.Locales) == 0 {
		config.I18n.Locales = viper.GetStringSlice("i18n.locales")
	}
	if viper.IsSet("theme.highlight_languages") && len(config.Theme.HighlightLanguages) == 0 {
		config.Theme.HighlightLanguages = viper.GetStringSlice("theme.highlight_languages")
	}
	if viper.IsSet("blog.feeds") && len(config.Blog.Feeds) == 0 {
		config.Blog.Feeds = viper.GetStringSlice("blog.feeds")
	}

	applyDefaults(&config)

	// Override no-open if explicitly set via flag
	if viper.IsSet("server.no-open") && viper.GetBool("server.no-open") {
		config.Server.Open = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.NewConfigError("invalid", "invalid configuration", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Site.Title == "" {
		config.Site.Title = "My Site"
	}
	if config.Site.URL == "" {
		config.Site.URL = "http://localhost"
	}
	if config.Site.BaseURL == "" {
		config.Site.BaseURL = "/"
	}
	if config.Navbar.Title == "" {
		config.Navbar.Title = config.Site.Title
	}
	if config.Theme.DefaultMode == "" {
		config.Theme.DefaultMode = "light"
	}
	if config.Theme.HighlightStyle == "" {
		config.Theme.HighlightStyle = "github"
	}
	if config.Blog.Dir == "" {
		config.Blog.Dir = "blog"
	}
	if config.Blog.RouteBase == "" {
		config.Blog.RouteBase = "/blog"
	}
	if config.Blog.PostsPerPage == 0 {
		config.Blog.PostsPerPage = 10
	}
	if config.Blog.AuthorsFile == "" {
		config.Blog.AuthorsFile = "content/authors.yml"
	}
	if len(config.Blog.Feeds) == 0 {
		config.Blog.Feeds = []string{"rss", "atom"}
	}
	if config.Blog.FeedLimit == 0 {
		config.Blog.FeedLimit = 20
	}
	if config.Blog.TruncateMarker == "" {
		config.Blog.TruncateMarker = "<!--truncate-->"
	}
	if config.I18n.DefaultLocale == "" {
		config.I18n.DefaultLocale = "en"
	}
	if len(config.I18n.Locales) == 0 {
		config.I18n.Locales = []string{config.I18n.DefaultLocale}
	}
	if config.Build.ContentDir == "" {
		config.Build.ContentDir = "content"
	}
	if config.Build.PagesDir == "" {
		config.Build.PagesDir = "pages"
	}
	if config.Build.StaticDir == "" {
		config.Build.StaticDir = "static"
	}
	if config.Build.OutputDir == "" {
		config.Build.OutputDir = "public"
	}
	if config.Build.Workers == 0 {
		config.Build.Workers = 4
	}
	if len(config.Build.Ignore) == 0 {
		config.Build.Ignore = []string{"node_modules", ".git"}
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3000
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Links.OnBrokenLinks == "" {
		config.Links.OnBrokenLinks = PolicyThrow
	}
	if config.Links.OnBrokenAnchors == "" {
		config.Links.OnBrokenAnchors = PolicyWarn
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if err := validateI18nConfig(&config.I18n); err != nil {
		return fmt.Errorf("i18n config: %w", err)
	}
	if err := validateLinksConfig(&config.Links); err != nil {
		return fmt.Errorf("links config: %w", err)
	}
	if err := validateThemeConfig(&config.Theme); err != nil {
		return fmt.Errorf("theme config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		// Basic validation - no dangerous characters
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	for name, path := range map[string]string{
		"content_dir": config.ContentDir,
		"static_dir":  config.StaticDir,
		"output_dir":  config.OutputDir,
	} {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, path, err)
		}
	}
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}
	return nil
}

func validateI18nConfig(config *I18nConfig) error {
	seen := make(map[string]bool)
	hasDefault := false
	for _, tag := range config.Locales {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("invalid locale tag '%s': %w", tag, err)
		}
		if seen[tag] {
			return fmt.Errorf("duplicate locale '%s'", tag)
		}
		seen[tag] = true
		if tag == config.DefaultLocale {
			hasDefault = true
		}
	}
	if !hasDefault {
		return fmt.Errorf("default locale '%s' is not in locales list", config.DefaultLocale)
	}
	return nil
}

func validateLinksConfig(config *LinksConfig) error {
	for name, policy := range map[string]string{
		"on_broken_links":   config.OnBrokenLinks,
		"on_broken_anchors": config.OnBrokenAnchors,
	} {
		switch policy {
		case PolicyIgnore, PolicyWarn, PolicyThrow:
		default:
			return fmt.Errorf("%s must be one of ignore|warn|throw, got '%s'", name, policy)
		}
	}
	return nil
}

func validateThemeConfig(config *ThemeConfig) error {
	switch config.DefaultMode {
	case "light", "dark":
	default:
		return fmt.Errorf("default_mode must be light or dark, got '%s'", config.DefaultMode)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
