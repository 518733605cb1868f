package cli

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt"
	"github.com/tsawler/wikimelt/config"
	"github.com/tsawler/wikimelt/export"
	"github.com/tsawler/wikimelt/store/sqlite"
)

func newExtractCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract records from a page and write them out",
		Long: `Extract fetches or reads a page, melts its data tables into
(identifier, attribute, value) records and writes them to a file.

Examples:
  # Default page and targets, CSV output
  wikimelt extract

  # Saved page, JSON Lines, two targets
  wikimelt extract -i page.html --targets Chile,Perú -o out.jsonl --format jsonl

  # Keep a history of runs
  wikimelt extract --sqlite runs.db
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := maps.Clone(sourceBindings)
			bindings["output.path"] = "output"
			bindings["output.format"] = "format"
			bindings["output.columns"] = "columns"
			bindings["store.sqlite"] = "sqlite"

			cfg, err := g.loadConfig(cmd, bindings)
			if err != nil {
				return err
			}
			return runExtract(cmd, g, cfg)
		},
	}

	addSourceFlags(cmd)
	d := config.Default()
	cmd.Flags().StringP("output", "o", d.Output.Path, "output file")
	cmd.Flags().String("format", d.Output.Format, "output format: csv, tsv, json, jsonl")
	cmd.Flags().String("columns", d.Output.Columns, "column names: default or vocabulary")
	cmd.Flags().String("sqlite", "", "record the run in this SQLite database")
	return cmd
}

func runExtract(cmd *cobra.Command, g *globalOptions, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := g.logger(cmd, cfg)
	out := cmd.OutOrStdout()

	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	progress := newTableProgress(cmd.ErrOrStderr(), g.quiet)
	ds, report, warnings, err := src.extractor.Progress(progress.Update).Run(ctx)
	progress.Finish()
	if err != nil && !errors.Is(err, wikimelt.ErrEmptyResult) {
		return err
	}

	fmt.Fprint(out, report)
	if len(warnings) > 0 && !g.quiet {
		fmt.Fprintf(out, "Warnings:\n%s\n", wikimelt.FormatWarnings(warnings))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", src.name, err)
	}

	format, _ := export.ParseFormat(cfg.Output.Format)
	columns, _ := export.ParseColumns(cfg.Output.Columns)
	ecfg := export.ConfigFor(format)
	ecfg.Columns = columns
	if err := export.NewExporterWithConfig(ecfg).ExportToFile(ds, cfg.Output.Path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s: %s\n", format, cfg.Output.Path)

	if cfg.Store.SQLite != "" {
		st, err := sqlite.Open(ctx, cfg.Store.SQLite)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.SaveRun(ctx, sqlite.RunInput{Source: src.name, Dataset: ds, Report: report})
		if err != nil {
			return err
		}
		logger.Info("run stored", "run_id", run.ID, "db", cfg.Store.SQLite)
		fmt.Fprintf(out, "Run: %s\n", run.ID)
	}

	return nil
}
