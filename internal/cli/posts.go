package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/poesyliang/poesy-blog/internal/content"
)

func (a *app) catalog() *content.Catalog {
	return content.NewCatalog(a.client,
		content.WithStaticDir(a.cfg.ContentDir),
		content.WithCacheTTL(a.cfg.CacheTTL),
	)
}

func newPostsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse the public post catalog",
		Long: `Browse the public post catalog: visible blogs from the API merged
with the static content files in content_dir, newest first.`,
	}
	cmd.AddCommand(newPostsListCmd(a), newPostsShowCmd(a))
	return cmd
}

func newPostsListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.catalog().Published(cmd.Context())
			if err != nil {
				return fmt.Errorf("load posts: %w", err)
			}
			if asJSON {
				return printJSON(a.out, posts)
			}
			if len(posts) == 0 {
				fmt.Fprintln(a.out, "No posts found.")
				return nil
			}

			fmt.Fprintf(a.out, "Posts (%d):\n\n", len(posts))
			for _, p := range posts {
				fmt.Fprintf(a.out, "- %s  %s (%d min)\n", p.Slug, displayTitle(p.Metadata.Title), p.ReadingTime)
				if a.verbose && p.Metadata.Summary != "" {
					fmt.Fprintf(a.out, "  %s\n", p.Metadata.Summary)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPostsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one post as Markdown",
		Long: `Show one post as Markdown. Slugs of the form blog-<id> are looked
up by blog ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := a.catalog().BySlug(cmd.Context(), args[0])
			if errors.Is(err, content.ErrNotFound) {
				return fmt.Errorf("no post with slug %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("find post: %w", err)
			}

			doc, err := content.Export(*post)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, doc)
			return nil
		},
	}
}

func newSitemapCmd(a *app) *cobra.Command {
	var (
		siteURL string
		asXML   bool
	)

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print the site map of the public catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.catalog().Published(cmd.Context())
			if err != nil {
				return fmt.Errorf("load posts: %w", err)
			}
			if siteURL == "" {
				siteURL = a.cfg.SiteURL
			}

			entries := content.Sitemap(siteURL, posts, time.Now())
			if asXML {
				return content.WriteSitemapXML(a.out, entries)
			}
			return printJSON(a.out, entries)
		},
	}

	cmd.Flags().StringVar(&siteURL, "site-url", "", "site root (default from config)")
	cmd.Flags().BoolVar(&asXML, "xml", false, "print sitemaps.org XML instead of JSON")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export published posts to Markdown files",
		Long: `Export the public catalog to Markdown files with YAML frontmatter.
Blog HTML is converted to Markdown.

Examples:
  poesy export ./backup
  poesy export ./backup --slug blog-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath := args[0]
			if err := os.MkdirAll(exportPath, 0755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			cat := a.catalog()
			var posts []content.Post
			if slug != "" {
				post, err := cat.BySlug(cmd.Context(), slug)
				if err != nil {
					return fmt.Errorf("find post %q: %w", slug, err)
				}
				posts = []content.Post{*post}
			} else {
				var err error
				posts, err = cat.Published(cmd.Context())
				if err != nil {
					return fmt.Errorf("load posts: %w", err)
				}
			}

			if len(posts) == 0 {
				fmt.Fprintln(a.out, "No posts to export.")
				return nil
			}
			fmt.Fprintf(a.out, "Exporting %d posts...\n", len(posts))

			for _, p := range posts {
				doc, err := content.Export(p)
				if err != nil {
					return err
				}
				filename := filepath.Join(exportPath, content.FileName(p))
				if err := os.WriteFile(filename, []byte(doc), 0644); err != nil {
					return fmt.Errorf("write %s: %w", filename, err)
				}
				if a.verbose {
					fmt.Fprintf(a.out, "  %s\n", filename)
				}
			}

			fmt.Fprintf(a.out, "Exported %d posts to %s\n", len(posts), exportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "export only this post")
	return cmd
}
