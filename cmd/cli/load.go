package main

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"goeda/adapters/delimited"
	"goeda/adapters/excel"
	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/internal/plan"
	"goeda/internal/session"
)

// loadOptions are the read flags shared by every command. Flags win over
// the plan file's read section.
type loadOptions struct {
	separator  string
	decimal    string
	sheet      string
	planPath   string
	timestamps bool
}

func (c *cli) addLoadFlags(cmd *cobra.Command, o *loadOptions) {
	cmd.Flags().StringVar(&o.separator, "sep", "", "Field separator (default: tab for .tsv, else EDA_SEPARATOR)")
	cmd.Flags().StringVar(&o.decimal, "decimal", "", "Decimal marker (default: EDA_DECIMAL)")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "Worksheet to read from .xlsx files (default: first)")
	cmd.Flags().StringVar(&o.planPath, "plan", "", "YAML cleaning plan to apply after loading")
	cmd.Flags().BoolVar(&o.timestamps, "timestamps", c.cfg.Data.InferTimestamps, "Infer timestamp columns")
}

// dataset is a loaded file with its plan applied.
type dataset struct {
	state  *session.State
	steps  []plan.StepResult
	source string
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// load reads path, applies the plan's coercions at load and then its steps.
func (c *cli) load(path string, o loadOptions) (*dataset, error) {
	var pl *plan.Plan
	if o.planPath != "" {
		var err error
		if pl, err = plan.Load(o.planPath); err != nil {
			return nil, err
		}
	} else {
		pl = &plan.Plan{}
	}

	sepRaw := firstNonEmpty(o.separator, pl.Separator)
	sep, err := delimited.ParseSeparator(firstNonEmpty(sepRaw, c.cfg.Data.Separator))
	if err != nil {
		return nil, err
	}
	if sepRaw == "" {
		sep = delimited.SeparatorFor(path, sep)
	}

	p := c.cfg.Data.Parser()
	if dec := firstNonEmpty(o.decimal, pl.Decimal); dec != "" {
		r, size := utf8.DecodeRuneInString(dec)
		if size != len(dec) || r == sep {
			return nil, errors.InvalidInput("decimal marker must be one character different from the separator")
		}
		p.Decimal = r
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadError("failed to open "+path, err)
	}
	defer f.Close()

	var raw *table.Raw
	if isSpreadsheet(path) {
		raw, err = excel.NewReader(firstNonEmpty(o.sheet, pl.Sheet)).Read(f)
	} else {
		raw, err = delimited.Read(f, sep)
	}
	if err != nil {
		return nil, err
	}

	coercions, err := pl.Coercions()
	if err != nil {
		return nil, err
	}
	t, err := raw.Build(p, coercions, o.timestamps)
	if err != nil {
		return nil, err
	}

	st := session.New(p,
		session.WithLogger(c.logger.WithName("Session")),
		session.WithEncoder("csv", delimited.NewWriter(sep, p)),
		session.WithEncoder("xlsx", excel.NewWriter()),
	)
	if err := st.Load(t); err != nil {
		return nil, err
	}
	steps, err := pl.Apply(st)
	if err != nil {
		return nil, err
	}
	return &dataset{state: st, steps: steps, source: filepath.Base(path)}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// formatFor picks the export format from an output path.
func formatFor(path string) string {
	if isSpreadsheet(path) {
		return "xlsx"
	}
	return "csv"
}
