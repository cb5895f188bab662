package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stanza-dev/stanza/internal/build"
	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/content"
	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/linkcheck"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/scanner"
	"github.com/stanza-dev/stanza/internal/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	Long: `Render every page, feed, and asset of the site into the output
directory (public/ by default). The build fails when content cannot be
parsed or when the link checker finds violations under the configured
broken-link policy.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("drafts", false, "Include draft posts")
	buildCmd.Flags().String("out", "", "Output directory (overrides config)")
	_ = viper.BindPFlag("build.drafts", buildCmd.Flags().Lookup("drafts"))
	_ = viper.BindPFlag("build.output_dir_override", buildCmd.Flags().Lookup("out"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if out := viper.GetString("build.output_dir_override"); out != "" {
		cfg.Build.OutputDir = out
	}

	logger := newLogger()
	site, err := loadSite(".", cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := site.builder.Build(ctx)
	if err != nil {
		return err
	}
	reportCollector(result.Collector)
	if result.Collector.HasErrors() {
		return fmt.Errorf("build failed with %d errors", len(result.Collector.GetErrors()))
	}

	checker := linkcheck.New(cfg, logger)
	links := checker.Check(ctx, result)
	authors := checker.CheckAuthors(site.registry, site.authors)
	reportCollector(links)
	reportCollector(authors)
	if links.HasErrors() || authors.HasErrors() {
		broken := len(links.GetErrors()) + len(authors.GetErrors())
		return errors.NewLinkError("broken_references",
			fmt.Sprintf("link check failed: %d broken references", broken))
	}

	fmt.Printf("Built %d routes and %d assets into %s in %v\n",
		len(result.Documents), len(result.Assets),
		filepath.Join(".", cfg.Build.OutputDir), result.Duration.Round(1e6))
	return nil
}

// site bundles everything the commands need after scanning.
type site struct {
	cfg      *config.Config
	locales  *i18n.Locales
	registry *registry.ContentRegistry
	authors  map[string]types.Author
	builder  *build.Builder
}

// loadSite scans the content tree and prepares a builder. Content parse
// errors are fatal here; the development server is more forgiving.
func loadSite(root string, cfg *config.Config, logger logging.Logger) (*site, error) {
	locales, err := i18n.New(cfg.I18n.DefaultLocale, cfg.I18n.Locales)
	if err != nil {
		return nil, err
	}

	authors, err := content.LoadAuthors(filepath.Join(root, cfg.Blog.AuthorsFile))
	if err != nil {
		return nil, err
	}

	reg := registry.NewContentRegistry()
	collector, err := scanner.NewContentScanner(reg, locales, cfg).ScanSite(root)
	if err != nil {
		return nil, err
	}
	reportCollector(collector)
	if collector.HasErrors() {
		return nil, fmt.Errorf("content has %d errors", len(collector.GetErrors()))
	}

	return &site{
		cfg:      cfg,
		locales:  locales,
		registry: reg,
		authors:  authors,
		builder:  build.NewBuilder(root, cfg, locales, reg, authors, logger),
	}, nil
}

// reportCollector prints collected diagnostics to stderr.
func reportCollector(collector *errors.ErrorCollector) {
	for _, buildErr := range collector.GetErrors() {
		fmt.Fprintln(os.Stderr, buildErr.Error())
	}
}
