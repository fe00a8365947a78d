package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goeda/internal"
	"goeda/internal/classifier"
	"goeda/internal/config"
	"goeda/internal/errors"
	"goeda/internal/summary"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg, internal.NewDefaultLogger()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries what every command shares.
type cli struct {
	cfg    *config.Config
	logger logr.Logger
}

func (c *cli) summarizer() *summary.Summarizer {
	s := summary.NewSummarizer()
	if c.cfg.Analysis.MinGroupSize > 0 {
		s.MinGroupSize = c.cfg.Analysis.MinGroupSize
	}
	if c.cfg.Analysis.HighCardinality > 0 {
		s.HighCardinality = c.cfg.Analysis.HighCardinality
	}
	return s
}

func newRootCmd(cfg *config.Config, logger logr.Logger) *cobra.Command {
	app := &cli{cfg: cfg, logger: logger}
	rootCmd := &cobra.Command{
		Use:           "goeda-cli",
		Short:         "Inspect, clean and summarize tabular datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newInspectCmd(app),
		newApplyCmd(app),
		newSummarizeCmd(app),
		newPairwiseCmd(app),
		newReportCmd(app),
	)
	return rootCmd
}

func newInspectCmd(app *cli) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "inspect [data-file]",
		Short: "List columns with their types, missing counts and offered strategies",
		Long: `Load a CSV, TSV or XLSX file and describe every column.

Example: goeda-cli inspect sales.csv --decimal ,`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.load(args[0], opts)
			if err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), ds)
		},
	}
	app.addLoadFlags(cmd, &opts)
	return cmd
}

func runInspect(w io.Writer, ds *dataset) error {
	descriptors, err := ds.state.Descriptors()
	if err != nil {
		return err
	}
	cur := ds.state.Current()
	fmt.Fprintf(w, "%s: %d rows, %d columns\n\n", ds.source, cur.NumRows(), cur.NumColumns())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tSEMANTIC\tNULLS\tSTRATEGIES")
	for _, d := range descriptors {
		ids := make([]string, len(d.Strategies))
		for i, s := range d.Strategies {
			ids[i] = string(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.Name, d.Type, d.Semantic, d.Nulls, strings.Join(ids, ","))
	}
	return tw.Flush()
}

func newApplyCmd(app *cli) *cobra.Command {
	var opts loadOptions
	var out string

	cmd := &cobra.Command{
		Use:   "apply [data-file]",
		Short: "Apply a cleaning plan and write the result",
		Long: `Load a file, run the steps of a YAML plan in order and export the
current table. The output format follows the extension of --out.

Example plan:

  types:
    notes: delete
  steps:
    - rename: {from: city, to: location}
    - impute: {column: age, strategy: median}
    - impute: {column: location, strategy: custom, value: Unknown}

Example: goeda-cli apply people.csv --plan clean.yaml --out clean.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.planPath == "" {
				return errors.InvalidInput("--plan is required")
			}
			ds, err := app.load(args[0], opts)
			if err != nil {
				return err
			}
			return runApply(cmd.OutOrStdout(), ds, out)
		},
	}
	app.addLoadFlags(cmd, &opts)
	cmd.Flags().StringVar(&out, "out", app.cfg.Data.ExportFilename, "Output file (.csv, .tsv or .xlsx)")
	return cmd
}

func runApply(w io.Writer, ds *dataset, out string) error {
	for _, s := range ds.steps {
		line := fmt.Sprintf("step %d: %s %s", s.Index, s.Action, s.Detail)
		if r := s.Imputation; r != nil {
			line += fmt.Sprintf(" (filled %d, dropped %d, remaining %d)", r.Filled, r.Dropped, r.Remaining)
		}
		fmt.Fprintln(w, line)
	}
	b, err := ds.state.Export(formatFor(out), nil)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	cur := ds.state.Current()
	fmt.Fprintf(w, "wrote %s: %d rows, %d columns\n", out, cur.NumRows(), cur.NumColumns())
	return nil
}

func newSummarizeCmd(app *cli) *cobra.Command {
	var opts loadOptions
	var columns []string
	var selection string

	cmd := &cobra.Command{
		Use:   "summarize [data-file]",
		Short: "Write descriptive statistics as CSV",
		Long: `Compute per-column statistics: moments for numeric columns, value
frequencies for categorical columns and the range of temporal columns.

Example: goeda-cli summarize people.csv --select numeric > stats.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.load(args[0], opts)
			if err != nil {
				return err
			}
			if selection != "" && len(columns) == 0 {
				sel, err := classifier.ParseSelector(selection)
				if err != nil {
					return err
				}
				if columns, err = classifier.Select(ds.state.Current(), sel); err != nil {
					return err
				}
				if len(columns) == 0 {
					return errors.InvalidInput(fmt.Sprintf("no %s columns", sel))
				}
			}
			sum, err := app.summarizer().Summarize(ds.state.Current(), columns)
			if err != nil {
				return err
			}
			for _, warning := range sum.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}
			return summary.WriteRecordsCSV(cmd.OutOrStdout(), sum.Records)
		},
	}
	app.addLoadFlags(cmd, &opts)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to summarize (default: all)")
	cmd.Flags().StringVar(&selection, "select", "", "Summarize only numeric|categorical|temporal columns")
	return cmd
}

func newPairwiseCmd(app *cli) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "pairwise [data-file] [column-a] [column-b]",
		Short: "Test the association between two columns",
		Long: `Run the test implied by the column types: Pearson correlation for two
numeric columns, chi-square for two categorical columns and Kruskal-Wallis
otherwise. The result is printed as JSON.

Example: goeda-cli pairwise people.csv age city`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.load(args[0], opts)
			if err != nil {
				return err
			}
			res, err := app.summarizer().SummarizePairwise(ds.state.Current(), args[1], args[2])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	app.addLoadFlags(cmd, &opts)
	return cmd
}

func newReportCmd(app *cli) *cobra.Command {
	var opts loadOptions
	var pairs []string
	var out string

	cmd := &cobra.Command{
		Use:   "report [data-file]",
		Short: "Render a markdown or HTML summary report",
		Long: `Render missing values, per-column statistics and any requested pairwise
tests. Output ending in .md is markdown, anything else a standalone HTML page.

Example: goeda-cli report people.csv --pair age,city --out report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.load(args[0], opts)
			if err != nil {
				return err
			}
			report, err := buildReport(app.summarizer(), ds, pairs)
			if err != nil {
				return err
			}
			var b []byte
			if strings.HasSuffix(strings.ToLower(out), ".md") {
				b = []byte(report.Markdown())
			} else {
				b = report.HTML()
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	app.addLoadFlags(cmd, &opts)
	cmd.Flags().StringArrayVar(&pairs, "pair", nil, "Column pair to test, as a,b (repeatable)")
	cmd.Flags().StringVar(&out, "out", "report.html", "Output file (.md or .html)")
	return cmd
}

func buildReport(sum *summary.Summarizer, ds *dataset, pairs []string) (summary.Report, error) {
	parsed := make([]summary.Pair, 0, len(pairs))
	for _, raw := range pairs {
		a, b, ok := strings.Cut(raw, ",")
		if !ok {
			return summary.Report{}, errors.InvalidInput(fmt.Sprintf("pair %q must be two column names separated by a comma", raw))
		}
		parsed = append(parsed, summary.Pair{A: strings.TrimSpace(a), B: strings.TrimSpace(b)})
	}
	return sum.Report(ds.state.Current(), ds.source, parsed)
}
