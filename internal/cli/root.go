// Package cli implements the wikimelt command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt/config"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	cfgFile  string
	logLevel string
	quiet    bool
}

// NewRootCmd builds the wikimelt command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "wikimelt",
		Short: "Extract identifier/attribute/value records from wiki tables",
		Long: `wikimelt reads a reference page (fetched from a MediaWiki wiki or
loaded from a file), finds its data tables and turns every table into
long-format records: one row per (identifier, attribute, value), tagged
with the table index and the nearest section heading.

Only rows whose identifier belongs to the target list are kept.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default is ./wikimelt.yaml or $HOME/.wikimelt/wikimelt.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "only print errors and results")

	root.AddCommand(
		newExtractCmd(g),
		newTablesCmd(g),
		newContentCmd(g),
		newRunsCmd(g),
	)
	return root
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration, letting every flag of cmd named in
// bindings override its key.
func (g *globalOptions) loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	l := config.NewLoader(g.cfgFile)
	l.BindFlag("log.level", cmd.Flags().Lookup("log-level"))
	for key, name := range bindings {
		l.BindFlag(key, cmd.Flags().Lookup(name))
	}
	return l.Load()
}

func (g *globalOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return newLogger(cmd.ErrOrStderr(), cfg.Log.Level, g.quiet)
}
