package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/linkcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate content, internal links, and author references",
	Long: `Render the site into a throwaway directory and run all validations:
front matter parsing, internal link targets, fragment anchors, and author
keys. Nothing is written to the configured output directory.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Render into a scratch directory, the real output stays untouched
	scratch, err := os.MkdirTemp("", "stanza-check-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)
	cfg.Build.OutputDir = scratch

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
		return fmt.Errorf("check failed: %d render errors", len(result.Collector.GetErrors()))
	}

	checker := linkcheck.New(cfg, logger)
	links := checker.Check(ctx, result)
	authors := checker.CheckAuthors(site.registry, site.authors)
	reportCollector(links)
	reportCollector(authors)

	if links.HasErrors() || authors.HasErrors() {
		broken := len(links.GetErrors()) + len(authors.GetErrors())
		return errors.NewLinkError("broken_references",
			fmt.Sprintf("check failed: %d broken references", broken))
	}

	fmt.Printf("Checked %d routes, all internal references resolve\n", len(result.Documents))
	return nil
}
