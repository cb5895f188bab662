package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the site's posts and pages",
	Long: `Scan the content tree and list every document with its locale,
kind, route, and date. Useful for spotting missing translations.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Output JSON instead of a table")
	listCmd.Flags().Bool("drafts", false, "Include draft posts")
}

// listEntry is the JSON shape of one document.
type listEntry struct {
	Kind   string   `json:"kind"`
	Locale string   `json:"locale"`
	Slug   string   `json:"slug"`
	Route  string   `json:"route"`
	Title  string   `json:"title"`
	Date   string   `json:"date,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Draft  bool     `json:"draft,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if drafts, _ := cmd.Flags().GetBool("drafts"); drafts {
		cfg.Build.Drafts = true
	}

	site, err := loadSite(".", cfg, newLogger())
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, locale := range site.locales.All {
		for _, page := range site.registry.Pages(locale) {
			entries = append(entries, toEntry(page))
		}
		for _, post := range site.registry.Posts(locale) {
			entries = append(entries, toEntry(post))
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tLOCALE\tROUTE\tDATE\tTITLE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.Kind, entry.Locale, entry.Route, entry.Date, entry.Title)
	}
	return w.Flush()
}

func toEntry(page *types.PageInfo) listEntry {
	entry := listEntry{
		Kind:   string(page.Kind),
		Locale: page.Locale,
		Slug:   page.Slug,
		Route:  page.Route,
		Title:  page.Title,
		Tags:   page.Tags,
		Draft:  page.Draft,
	}
	if !page.Date.IsZero() {
		entry.Date = page.Date.Format("2006-01-02")
	}
	return entry
}
