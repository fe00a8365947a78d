package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goeda/domain/table"
)

// MissingRow is one line of the missing-values section of a report.
type MissingRow struct {
	Column string
	Nulls  int
}

// Report bundles what the markdown report renders.
type Report struct {
	Title    string
	Rows     int
	Columns  int
	Missing  []MissingRow
	Summary  *Summary
	Pairwise []PairResult
}

// Pair names two columns for a pairwise test.
type Pair struct {
	A, B string
}

// Report computes every section of a report for t: missing counts, the
// statistics of every column and the requested pairwise tests.
func (s *Summarizer) Report(t *table.Table, title string, pairs []Pair) (Report, error) {
	stats, err := s.Summarize(t, nil)
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Title:   title,
		Rows:    t.NumRows(),
		Columns: t.NumColumns(),
		Summary: stats,
	}
	for _, c := range t.Columns() {
		if n := c.NullCount(); n > 0 {
			rep.Missing = append(rep.Missing, MissingRow{Column: c.Name, Nulls: n})
		}
	}
	for _, p := range pairs {
		res, err := s.SummarizePairwise(t, p.A, p.B)
		if err != nil {
			return Report{}, err
		}
		rep.Pairwise = append(rep.Pairwise, res)
	}
	return rep, nil
}

var csvHeader = []string{"Variable", "Mean", "Median", "Std", "Min", "Max", "Value", "Count", "Percentage", "Earliest", "Latest"}

func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 4, 64)
}

func recordRow(r Record) []string {
	row := []string{r.Variable, fmtFloat(r.Mean), fmtFloat(r.Median), fmtFloat(r.StdDev), fmtFloat(r.Min), fmtFloat(r.Max), "", "", "", "", ""}
	if r.Value != nil {
		row[6] = *r.Value
		row[7] = strconv.Itoa(r.Count)
	}
	if r.Percentage != nil {
		row[8] = strconv.FormatFloat(*r.Percentage, 'f', 2, 64)
	}
	if r.Earliest != nil {
		row[9] = r.Earliest.Format(table.ExportTimeLayout)
	}
	if r.Latest != nil {
		row[10] = r.Latest.Format(table.ExportTimeLayout)
	}
	return row
}

// WriteRecordsCSV writes the statistics table as comma-separated values.
func WriteRecordsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Markdown renders the report.
func (r Report) Markdown() string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Dataset summary"
	}
	fmt.Fprintf(&b, "# %s\n\n", mdEscape(title))
	fmt.Fprintf(&b, "- Rows: %d\n- Columns: %d\n\n", r.Rows, r.Columns)

	b.WriteString("## Missing values\n\n")
	if len(r.Missing) == 0 {
		b.WriteString("No missing values.\n\n")
	} else {
		b.WriteString("| Column | Missing |\n|---|---:|\n")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "| %s | %d |\n", mdEscape(m.Column), m.Nulls)
		}
		b.WriteString("\n")
	}

	if r.Summary != nil && len(r.Summary.Records) > 0 {
		b.WriteString("## Statistics\n\n")
		b.WriteString("| " + strings.Join(csvHeader, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat("---|", len(csvHeader)) + "\n")
		for _, rec := range r.Summary.Records {
			row := recordRow(rec)
			for i := range row {
				row[i] = mdEscape(row[i])
			}
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		b.WriteString("\n")
		for _, w := range r.Summary.Warnings {
			fmt.Fprintf(&b, "> %s\n\n", mdEscape(w))
		}
	}

	if len(r.Pairwise) > 0 {
		b.WriteString("## Pairwise tests\n\n")
		b.WriteString("| A | B | Test | N | Statistic | p-value | df | Note |\n|---|---|---|---:|---:|---:|---:|---|\n")
		for _, p := range r.Pairwise {
			if !p.Computable {
				fmt.Fprintf(&b, "| %s | %s | %s | %d | | | | %s |\n", mdEscape(p.A), mdEscape(p.B), p.Kind, p.N, mdEscape(p.Reason))
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %.4f | %.4g | %d | |\n", mdEscape(p.A), mdEscape(p.B), p.Kind, p.N, p.Statistic, p.PValue, p.DF)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report as a standalone page.
func (r Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	title := r.Title
	if title == "" {
		title = "Dataset summary"
	}
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}
