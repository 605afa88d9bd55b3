// Package cli provides the poesy command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries state shared by all commands of one invocation.
type app struct {
	// Global flags
	configFile string
	apiURL     string
	portFile   string
	verbose    bool

	cfg    config.Config
	client *client.Client
	out    io.Writer
	theme  Theme
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	apiURL := a.apiURL
	if apiURL == "" {
		apiURL = cfg.APIURL
	}
	portFile := a.portFile
	if portFile == "" {
		portFile = cfg.PortFile
	}
	a.client = client.New(client.ResolveURL(apiURL, portFile), client.WithTimeout(a.cfg.ClientTimeout))
	a.out = cmd.OutOrStdout()
	return nil
}

// interactive reports whether output goes to a terminal.
func (a *app) interactive() bool {
	f, ok := a.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{theme: defaultTheme}

	rootCmd := &cobra.Command{
		Use:   "poesy",
		Short: "Operate the poesy blog API",
		Long: `Poesy talks to the poesy blog API: browse the legacy WordPress posts,
manage blogs, run the WordPress to blog migration and build the public
post catalog.

The API address comes from --api-url, API_URL, or the port file the
server writes on startup, in that order.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL")
	rootCmd.PersistentFlags().StringVar(&a.portFile, "port-file", "", "port file written by the API")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newBlogsCmd(a))
	rootCmd.AddCommand(newWpPostsCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newSummaryCmd(a))
	rootCmd.AddCommand(newJobsCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newPostsCmd(a))
	rootCmd.AddCommand(newSitemapCmd(a))
	rootCmd.AddCommand(newExportCmd(a))

	return rootCmd
}

// Execute runs the CLI until completion or interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
