// Package session tracks one dataset across successive edits: a baseline,
// an optional working copy, and the edited flag that picks between them.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/internal/imputation"
)

// Encoder serializes a table for export.
type Encoder interface {
	Encode(t *table.Table) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(t *table.Table) ([]byte, error)

func (f EncoderFunc) Encode(t *table.Table) ([]byte, error) { return f(t) }

// MissingEntry is one row of the missing-values report.
type MissingEntry struct {
	Column  string  `json:"column"`
	Nulls   int     `json:"nulls"`
	Percent float64 `json:"percent"`
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger for state transitions.
func WithLogger(l logr.Logger) Option {
	return func(s *State) { s.logger = l }
}

// WithEncoder registers an export format.
func WithEncoder(format string, enc Encoder) Option {
	return func(s *State) { s.encoders[format] = enc }
}

// State is the dataset state of one session. It is not safe for concurrent
// use; Store serializes access per session.
type State struct {
	baseline *table.Table
	working  *table.Table
	edited   bool
	version  uint64

	parser   table.Parser
	engine   *imputation.Engine
	encoders map[string]Encoder
	exports  map[core.Hash][]byte
	logger   logr.Logger
}

// New creates an empty state. Custom values and coercions are parsed with p.
func New(p table.Parser, opts ...Option) *State {
	s := &State{
		parser:   p,
		engine:   imputation.NewEngine(p),
		encoders: make(map[string]Encoder),
		exports:  make(map[core.Hash][]byte),
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load installs t as both baseline and working copy and clears the edited
// flag. A table without columns is rejected.
func (s *State) Load(t *table.Table) error {
	if t == nil || t.NumColumns() == 0 {
		return errors.LoadError("dataset has no columns", nil)
	}
	s.baseline = t
	s.working = t
	s.edited = false
	s.commit()
	s.logger.Info("dataset loaded", "columns", t.NumColumns(), "rows", t.NumRows(), "version", s.version)
	return nil
}

// Loaded reports whether a dataset has been loaded.
func (s *State) Loaded() bool { return s.baseline != nil }

// Current returns the baseline when nothing has been edited, else the
// working copy.
func (s *State) Current() *table.Table {
	if s.edited {
		return s.working
	}
	return s.baseline
}

// Baseline returns the table reset returns to.
func (s *State) Baseline() *table.Table { return s.baseline }

// IsEdited reports whether the current table carries imputations.
func (s *State) IsEdited() bool { return s.edited }

// Version increases with every committed transition.
func (s *State) Version() uint64 { return s.version }

func (s *State) requireLoaded(op string) error {
	if s.baseline == nil {
		return errors.WithOp(op, errors.LoadError("no dataset loaded", nil))
	}
	return nil
}

// commitStructural installs a structurally edited table as both baseline and
// working copy so the edit survives reset. The edited flag is unchanged.
func (s *State) commitStructural(t *table.Table) {
	s.baseline = t
	s.working = t
	s.commit()
}

func (s *State) commit() {
	s.version++
	clear(s.exports)
}

// RenameColumn renames a column. Renaming to the current name is a no-op.
func (s *State) RenameColumn(oldName, newName string) error {
	if err := s.requireLoaded("rename"); err != nil {
		return err
	}
	if oldName == newName && s.Current().Has(oldName) {
		return nil
	}
	renamed, err := s.Current().Rename(oldName, newName)
	if err != nil {
		return errors.WithOp("rename", err)
	}
	s.commitStructural(renamed)
	s.logger.Info("column renamed", "from", oldName, "to", newName, "version", s.version)
	return nil
}

// DeleteColumn removes a column. The last column cannot be deleted.
func (s *State) DeleteColumn(name string) error {
	if err := s.requireLoaded("delete"); err != nil {
		return err
	}
	cur := s.Current()
	if !cur.Has(name) {
		return errors.WithOp("delete", errors.ColumnNotFound(name))
	}
	if cur.NumColumns() == 1 {
		appErr := errors.InvalidInput("cannot delete the only remaining column")
		appErr.Column = name
		return errors.WithOp("delete", appErr)
	}
	out, err := cur.Drop(name)
	if err != nil {
		return errors.WithOp("delete", err)
	}
	s.commitStructural(out)
	s.logger.Info("column deleted", "column", name, "version", s.version)
	return nil
}

// CoerceColumn changes the declared type of a column.
func (s *State) CoerceColumn(name string, to table.DataType) error {
	if err := s.requireLoaded("coerce"); err != nil {
		return err
	}
	cur := s.Current()
	col, err := cur.Column(name)
	if err != nil {
		return errors.WithOp("coerce", err)
	}
	converted, err := s.parser.Convert(col, to)
	if err != nil {
		return errors.WithOp("coerce", err)
	}
	out, err := cur.Replace(converted)
	if err != nil {
		return errors.WithOp("coerce", err)
	}
	s.commitStructural(out)
	s.logger.Info("column coerced", "column", name, "from", col.Type, "to", to, "version", s.version)
	return nil
}

// ApplyImputation runs one imputation against the current table and commits
// the result as the working copy.
func (s *State) ApplyImputation(req imputation.Request) (imputation.Result, error) {
	if err := s.requireLoaded("impute"); err != nil {
		return imputation.Result{}, err
	}
	res, err := s.engine.Apply(s.Current(), req)
	if err != nil {
		s.logger.V(1).Info("imputation rejected", "column", req.Column, "strategy", req.Strategy, "error", err.Error())
		return imputation.Result{}, errors.WithOp("impute", err)
	}
	s.working = res.Table
	s.edited = true
	s.commit()
	s.logger.Info("imputation applied",
		"column", req.Column, "strategy", req.Strategy,
		"filled", res.Filled, "dropped", res.Dropped, "remaining", res.Remaining,
		"version", s.version)
	return res, nil
}

// Reset discards imputations. Structural edits stay.
func (s *State) Reset() error {
	if err := s.requireLoaded("reset"); err != nil {
		return err
	}
	s.working = s.baseline
	s.edited = false
	s.commit()
	s.logger.Info("dataset reset", "version", s.version)
	return nil
}

// MissingReport lists the columns with at least one null, in table order.
func (s *State) MissingReport() []MissingEntry {
	cur := s.Current()
	if cur == nil {
		return nil
	}
	return MissingReport(cur)
}

// MissingReport lists the columns of t with at least one null.
func MissingReport(t *table.Table) []MissingEntry {
	var out []MissingEntry
	for _, c := range t.Columns() {
		n := c.NullCount()
		if n == 0 {
			continue
		}
		out = append(out, MissingEntry{
			Column:  c.Name,
			Nulls:   n,
			Percent: 100 * float64(n) / float64(t.NumRows()),
		})
	}
	return out
}

// Descriptors describes every column of the current table.
func (s *State) Descriptors() ([]imputation.Descriptor, error) {
	if err := s.requireLoaded("describe"); err != nil {
		return nil, err
	}
	return imputation.Describe(s.Current())
}

// Formats lists the registered export formats.
func (s *State) Formats() []string {
	out := make([]string, 0, len(s.encoders))
	for f := range s.encoders {
		out = append(out, f)
	}
	return out
}

// Export serializes the current table, or the named subset of its columns.
// Bytes are cached until the next transition.
func (s *State) Export(format string, columns []string) ([]byte, error) {
	if err := s.requireLoaded("export"); err != nil {
		return nil, err
	}
	enc, ok := s.encoders[format]
	if !ok {
		return nil, errors.WithOp("export", errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format)))
	}
	key := core.ComputeKeyHash(strconv.FormatUint(s.version, 10), format, strings.Join(columns, "\x1f"))
	if b, ok := s.exports[key]; ok {
		s.logger.V(1).Info("export served from cache", "format", format, "version", s.version)
		return b, nil
	}

	t := s.Current()
	if len(columns) > 0 {
		sub, err := t.Select(columns)
		if err != nil {
			return nil, errors.WithOp("export", err)
		}
		t = sub
	}
	b, err := enc.Encode(t)
	if err != nil {
		return nil, errors.WithOp("export", errors.Wrapf(err, "failed to encode %s", format))
	}
	s.exports[key] = b
	s.logger.V(1).Info("export encoded", "format", format, "bytes", len(b), "version", s.version)
	return b, nil
}
