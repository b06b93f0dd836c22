package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubsite/scaffold"
)

func (a *app) newCmd() *cobra.Command {
	var data scaffold.Data
	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a new site",
		Example: `  pubsite new myblog
  pubsite new myblog --name "My Blog" --author "Jane Doe"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if data.SiteName == "" {
				data.SiteName = toTitle(filepath.Base(dir))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating new site: %s\n\n", dir)
			if err := scaffold.Generate(dir, data, out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  cd %s\n", dir)
			fmt.Fprintln(out, "  pubsite serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&data.SiteName, "name", "", "site name (default derived from dir)")
	cmd.Flags().StringVar(&data.Author, "author", "", "author name")
	cmd.Flags().StringVar(&data.URL, "url", "", "canonical site URL")
	return cmd
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog"
func toTitle(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return cases.Title(language.English).String(s)
}
