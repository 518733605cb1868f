package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt"
	"github.com/tsawler/wikimelt/config"
	"github.com/tsawler/wikimelt/pipeline"
)

func newTablesCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the data tables of a page and their identifier columns",
		Long: `Tables prints every recognized table with its index, heading, the
column chosen as identifier column and the score of each column. Use it to
see why a table produced no records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd, sourceBindings)
			if err != nil {
				return err
			}
			return runTables(cmd, g, cfg)
		},
	}
	addSourceFlags(cmd)
	return cmd
}

func runTables(cmd *cobra.Command, g *globalOptions, cfg *config.Config) error {
	ctx := cmd.Context()

	src, err := openSource(ctx, cfg, g.logger(cmd, cfg))
	if err != nil {
		return err
	}
	defer src.Close()

	report, _, err := src.extractor.Report(ctx)
	if err != nil && !errors.Is(err, wikimelt.ErrEmptyResult) {
		return err
	}

	printTables(cmd.OutOrStdout(), report)
	return nil
}

func printTables(w io.Writer, report *pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tHEADING\tIDENTIFIER COLUMN\tRECORDS\tSCORES")
	for _, res := range report.Tables {
		column := "-"
		if res.Column >= 0 {
			column = fmt.Sprintf("%d (%s)", res.Column, labelOf(res))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", res.TableIndex, res.Heading, column, len(res.Records), scoreList(res))
	}
	tw.Flush()

	for _, f := range report.Failures {
		fmt.Fprintf(w, "not parsed: table #%d: %v\n", f.Ordinal, f.Err)
	}
}

func labelOf(res pipeline.TableResult) string {
	for _, s := range res.Scores {
		if s.Index == res.Column {
			return s.Label
		}
	}
	return ""
}

func scoreList(res pipeline.TableResult) string {
	out := ""
	for i, s := range res.Scores {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d:%d", s.Index, s.Score)
	}
	return out
}
