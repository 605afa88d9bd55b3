package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poesyliang/poesy-blog/internal/models"
)

func newWpPostsCmd(a *app) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "wp-posts <origin>",
		Short: "List legacy WordPress posts of one origin",
		Long: `List one page of wp_posts from a legacy WordPress origin.

Origins: poesyliang.com, poesyliang.net

Examples:
  poesy wp-posts poesyliang.com
  poesy wp-posts poesyliang.net --limit 5 --offset 10`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{models.OriginCom.String(), models.OriginNet.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := models.ParseOrigin(args[0])
			if err != nil {
				return err
			}

			posts, err := a.client.ListWpPosts(cmd.Context(), origin, limit, offset)
			if err != nil {
				return fmt.Errorf("list %s wp_posts: %w", origin, err)
			}
			if asJSON {
				return printJSON(a.out, posts)
			}
			if len(posts) == 0 {
				fmt.Fprintln(a.out, "No posts found.")
				return nil
			}

			fmt.Fprintf(a.out, "%s wp_posts (%d):\n\n", origin, len(posts))
			for _, p := range posts {
				fmt.Fprintf(a.out, "- [%s] %s (%s, %s)\n", p.ID, displayTitle(p.PostTitle), p.PostStatus, p.PostDate)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
