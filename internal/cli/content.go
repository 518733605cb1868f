package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt/content"
	"github.com/tsawler/wikimelt/fetch"
)

func newContentCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content URL",
		Short: "Print the main readable content of a page as Markdown",
		Long: `Content fetches a page, drops navigation and wiki boilerplate and
prints the remaining main content as Markdown, tables included.

Exclusion modes: none, explicit, standard (default), aggressive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd, map[string]string{
				"content.exclusion": "exclusion",
				"fetch.timeout":     "timeout",
			})
			if err != nil {
				return err
			}

			mode, _ := content.ParseExclusionMode(strings.ToLower(cfg.Content.Exclusion))
			client, err := fetch.New(cfg.FetchOptions())
			if err != nil {
				return err
			}
			defer client.Close()

			g.logger(cmd, cfg).Info("extracting content", "url", args[0], "exclusion", mode)
			md, err := content.Extract(cmd.Context(), client, args[0], content.Options{Exclusion: mode})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}

	cmd.Flags().String("exclusion", "standard", "navigation exclusion mode")
	cmd.Flags().Duration("timeout", fetch.DefaultTimeout, "request timeout")
	return cmd
}
