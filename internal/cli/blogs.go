package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poesyliang/poesy-blog/internal/models"
)

func newBlogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "List, show and create blogs",
	}
	cmd.AddCommand(newBlogsListCmd(a), newBlogsGetCmd(a), newBlogsCreateCmd(a))
	return cmd
}

func newBlogsListCmd(a *app) *cobra.Command {
	var (
		limit  int
		offset int
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blogs",
		Long: `List blogs from the blog store.

Examples:
  poesy blogs list
  poesy blogs list --limit 10 --offset 20
  poesy blogs list --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				blogs []models.BlogPost
				err   error
			)
			if all {
				blogs, err = a.client.AllBlogs(cmd.Context(), 0)
			} else {
				blogs, err = a.client.ListBlogs(cmd.Context(), limit, offset)
			}
			if err != nil {
				return fmt.Errorf("list blogs: %w", err)
			}

			if asJSON {
				return printJSON(a.out, blogs)
			}
			if len(blogs) == 0 {
				fmt.Fprintln(a.out, "No blogs found.")
				return nil
			}

			fmt.Fprintf(a.out, "Blogs (%d):\n\n", len(blogs))
			for _, b := range blogs {
				fmt.Fprintf(a.out, "- [%s] %s (%s, %s)\n", b.ID, displayTitle(b.BlogTitle), b.BlogStatus, b.BlogDate)
				if a.verbose && b.BlogExcerpt != "" {
					fmt.Fprintf(a.out, "  %s\n", b.BlogExcerpt)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	cmd.Flags().BoolVar(&all, "all", false, "page through every blog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newBlogsGetCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.client.GetBlog(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get blog %s: %w", args[0], err)
			}
			if asJSON {
				return printJSON(a.out, b)
			}

			fmt.Fprintf(a.out, "Blog: %s\n", b.ID)
			fmt.Fprintf(a.out, "  Title: %s\n", displayTitle(b.BlogTitle))
			fmt.Fprintf(a.out, "  Name: %s\n", b.BlogName)
			fmt.Fprintf(a.out, "  Status: %s\n", b.BlogStatus)
			fmt.Fprintf(a.out, "  Date: %s\n", b.BlogDate)
			if b.Tags != "" {
				fmt.Fprintf(a.out, "  Tags: %s\n", b.Tags)
			}
			fmt.Fprintf(a.out, "  Likes: %d\n", b.LikeCount)
			if a.verbose {
				fmt.Fprintf(a.out, "\n%s\n", b.BlogContent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newBlogsCreateCmd(a *app) *cobra.Command {
	var (
		file string
		blog models.BlogPost
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blog",
		Long: `Create a blog from flags or from a JSON file.

Examples:
  poesy blogs create --title "Ink" --name ink --content "<p>...</p>"
  poesy blogs create --file blog.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read blog file: %w", err)
				}
				blog = models.BlogPost{}
				if err := json.Unmarshal(data, &blog); err != nil {
					return fmt.Errorf("parse blog file: %w", err)
				}
			}
			if blog.BlogTitle == "" {
				return errors.New("a blog title is required (--title or blog_title in --file)")
			}
			if blog.BlogName == "" {
				blog.BlogName = models.Slugify(blog.BlogTitle)
			}

			id, err := a.client.CreateBlog(cmd.Context(), blog)
			if err != nil {
				return fmt.Errorf("create blog: %w", err)
			}
			fmt.Fprintf(a.out, "Created blog %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the blog")
	cmd.Flags().StringVar(&blog.BlogTitle, "title", "", "blog title")
	cmd.Flags().StringVar(&blog.BlogName, "name", "", "blog slug (default derived from the title)")
	cmd.Flags().StringVar(&blog.BlogContent, "content", "", "blog HTML content")
	cmd.Flags().StringVar(&blog.BlogExcerpt, "excerpt", "", "blog excerpt")
	cmd.Flags().StringVar(&blog.BlogStatus, "status", models.StatusDraft, "publish or draft")
	cmd.Flags().StringVar(&blog.Tags, "tags", "", "comma separated tags")
	return cmd
}
