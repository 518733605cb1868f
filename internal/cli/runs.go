package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt/config"
	"github.com/tsawler/wikimelt/export"
	"github.com/tsawler/wikimelt/store/sqlite"
)

func newRunsCmd(g *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the runs stored in a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tRECORDS\tTABLES\tSOURCE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d\t%s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Records,
					r.TablesWithRecords, r.TablesParsed, r.Source)
			}
			return tw.Flush()
		},
	}

	cmd.PersistentFlags().String("sqlite", "", "run database (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 for all)")

	cmd.AddCommand(newRunsExportCmd(g), newRunsDeleteCmd(g))
	return cmd
}

func newRunsExportCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write the records of a stored run to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer st.Close()

			ds, err := st.Dataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			format, _ := export.ParseFormat(cfg.Output.Format)
			columns, _ := export.ParseColumns(cfg.Output.Columns)
			ecfg := export.ConfigFor(format)
			ecfg.Columns = columns
			if err := export.NewExporterWithConfig(ecfg).ExportToFile(ds, cfg.Output.Path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d records: %s\n", ds.Len(), cfg.Output.Path)
			return nil
		},
	}

	d := config.Default()
	cmd.Flags().StringP("output", "o", d.Output.Path, "output file")
	cmd.Flags().String("format", d.Output.Format, "output format: csv, tsv, json, jsonl")
	cmd.Flags().String("columns", d.Output.Columns, "column names: default or vocabulary")
	return cmd
}

func newRunsDeleteCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}

func openStore(cmd *cobra.Command, g *globalOptions) (*sqlite.Store, *config.Config, error) {
	cfg, err := g.loadConfig(cmd, map[string]string{
		"store.sqlite":   "sqlite",
		"output.path":    "output",
		"output.format":  "format",
		"output.columns": "columns",
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.SQLite == "" {
		return nil, nil, fmt.Errorf("no run database: set --sqlite or store.sqlite")
	}

	st, err := sqlite.Open(cmd.Context(), cfg.Store.SQLite)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}
