package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stanza-dev/stanza/internal/scaffolding"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter site",
	Long: `Create a runnable starter site: configuration, sample localized
posts sharing one slug, about pages, the authors file, and feature icons.

Examples:
  stanza init                     # Scaffold into the current directory
  stanza init my-site             # Scaffold into ./my-site
  stanza init --minimal           # Skip the sample posts and icons`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("title", "", "Site title")
	initCmd.Flags().String("tagline", "", "Site tagline")
	initCmd.Flags().String("url", "", "Production URL")
	initCmd.Flags().String("default-locale", "en", "Default locale")
	initCmd.Flags().StringSlice("locales", nil, "Locales to scaffold (default en,de)")
	initCmd.Flags().Bool("minimal", false, "Skip sample posts and feature icons")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating site directory: %w", err)
	}

	title, _ := cmd.Flags().GetString("title")
	tagline, _ := cmd.Flags().GetString("tagline")
	url, _ := cmd.Flags().GetString("url")
	defaultLocale, _ := cmd.Flags().GetString("default-locale")
	locales, _ := cmd.Flags().GetStringSlice("locales")
	minimal, _ := cmd.Flags().GetBool("minimal")

	gen := scaffolding.NewSiteGenerator(root)
	err := gen.Generate(scaffolding.Options{
		Title:         title,
		Tagline:       tagline,
		URL:           url,
		DefaultLocale: defaultLocale,
		Locales:       locales,
		Minimal:       minimal,
	})
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	fmt.Printf("Created a new site in %s\n\nNext:\n  cd %s\n  stanza serve\n", abs, root)
	return nil
}
