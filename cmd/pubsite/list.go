package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
)

func (a *app) listCmd() *cobra.Command {
	var tag, category, terms string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts or terms from the last build",
		Long: `list reads site.db, written by the last build, so it does not parse
any content. Filters compare case-insensitively.`,
		Example: `  pubsite list
  pubsite list --tag go
  pubsite list --terms categories`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tag != "" && category != "" {
				return errors.New("--tag and --category are mutually exclusive")
			}
			if _, err := os.Stat(a.cfg.DatabasePath); err != nil {
				return fmt.Errorf("%s not found, run pubsite build first", a.cfg.DatabasePath)
			}
			store, err := pubsite.NewStore(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)

			if terms != "" {
				kind := pubsite.TermKind(terms)
				if kind != pubsite.Categories && kind != pubsite.Tags {
					return fmt.Errorf("--terms must be %q or %q", pubsite.Categories, pubsite.Tags)
				}
				list, err := store.ListTerms(kind)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					return nil
				}
				t.AppendHeader(table.Row{"Term", "Posts", "Path"})
				for _, term := range list {
					t.AppendRow(table.Row{term.Name, term.Count, "/" + string(kind) + "/" + term.Slug + "/"})
				}
				t.Render()
				return nil
			}

			kind, term := pubsite.Tags, tag
			if category != "" {
				kind, term = pubsite.Categories, category
			}
			posts, err := store.ListPosts(kind, term)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				return nil
			}
			t.AppendHeader(table.Row{"Date", "Title", "Permalink", "Tags"})
			for _, p := range posts {
				t.AppendRow(table.Row{p.Date.Format("2006-01-02"), p.Title, p.Permalink, pubsite.JoinTags(p.Tags)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only posts with this tag")
	cmd.Flags().StringVar(&category, "category", "", "only posts in this category")
	cmd.Flags().StringVar(&terms, "terms", "", "list terms instead of posts: categories or tags")
	return cmd
}
