// Package plan replays a YAML cleaning recipe against a dataset state.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/internal/imputation"
	"goeda/internal/session"
)

// Plan is a cleaning recipe: read options, load-time coercions, then an
// ordered list of edits.
type Plan struct {
	Separator string            `yaml:"separator,omitempty"`
	Decimal   string            `yaml:"decimal,omitempty"`
	Sheet     string            `yaml:"sheet,omitempty"`
	Types     map[string]string `yaml:"types,omitempty"`
	Steps     []Step            `yaml:"steps"`
}

// Step holds exactly one edit.
type Step struct {
	Rename *RenameStep         `yaml:"rename,omitempty"`
	Impute *imputation.Request `yaml:"impute,omitempty"`
	Delete string              `yaml:"delete,omitempty"`
	Coerce *CoerceStep         `yaml:"coerce,omitempty"`
	Reset  bool                `yaml:"reset,omitempty"`
}

type RenameStep struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type CoerceStep struct {
	Column string `yaml:"column"`
	Type   string `yaml:"type"`
}

// StepResult reports what one step did.
type StepResult struct {
	Index      int                `json:"index"`
	Action     string             `json:"action"`
	Detail     string             `json:"detail"`
	Imputation *imputation.Result `json:"imputation,omitempty"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse plan: %w", err))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s Step) action() (string, int) {
	n := 0
	action := ""
	if s.Rename != nil {
		n, action = n+1, "rename"
	}
	if s.Impute != nil {
		n, action = n+1, "impute"
	}
	if s.Delete != "" {
		n, action = n+1, "delete"
	}
	if s.Coerce != nil {
		n, action = n+1, "coerce"
	}
	if s.Reset {
		n, action = n+1, "reset"
	}
	return action, n
}

// Validate checks that every step names exactly one edit and every type
// name is known.
func (p *Plan) Validate() error {
	if _, err := p.Coercions(); err != nil {
		return err
	}
	for i, s := range p.Steps {
		action, n := s.action()
		if n != 1 {
			return errors.InvalidInput(fmt.Sprintf("step %d must contain exactly one of rename, impute, delete, coerce, reset (has %d)", i+1, n))
		}
		switch action {
		case "rename":
			if s.Rename.From == "" || s.Rename.To == "" {
				return errors.InvalidInput(fmt.Sprintf("step %d: rename needs from and to", i+1))
			}
		case "impute":
			if s.Impute.Column == "" || s.Impute.Strategy == "" {
				return errors.InvalidInput(fmt.Sprintf("step %d: impute needs column and strategy", i+1))
			}
		case "coerce":
			if _, ok := table.ParseDataType(s.Coerce.Type); !ok {
				return errors.UnknownType(s.Coerce.Column, s.Coerce.Type)
			}
		}
	}
	return nil
}

// Coercions converts the types section into a load-time plan.
func (p *Plan) Coercions() (table.Plan, error) {
	out := make(table.Plan, len(p.Types))
	for col, typ := range p.Types {
		c, err := table.ParseCoercion(typ)
		if err != nil {
			return nil, errors.UnknownType(col, typ)
		}
		out[col] = c
	}
	return out, nil
}

// Apply runs the steps in order. It stops at the first failing step; the
// state keeps every step before it.
func (p *Plan) Apply(st *session.State) ([]StepResult, error) {
	results := make([]StepResult, 0, len(p.Steps))
	for i, s := range p.Steps {
		action, _ := s.action()
		res := StepResult{Index: i + 1, Action: action}
		var err error
		switch action {
		case "rename":
			err = st.RenameColumn(s.Rename.From, s.Rename.To)
			res.Detail = s.Rename.From + " -> " + s.Rename.To
		case "impute":
			var r imputation.Result
			r, err = st.ApplyImputation(*s.Impute)
			res.Detail = fmt.Sprintf("%s: %s", s.Impute.Column, s.Impute.Strategy.DisplayName())
			if err == nil {
				res.Imputation = &r
			}
		case "delete":
			err = st.DeleteColumn(s.Delete)
			res.Detail = s.Delete
		case "coerce":
			typ, _ := table.ParseDataType(s.Coerce.Type)
			err = st.CoerceColumn(s.Coerce.Column, typ)
			res.Detail = fmt.Sprintf("%s -> %s", s.Coerce.Column, typ)
		case "reset":
			err = st.Reset()
		}
		if err != nil {
			return results, errors.Wrapf(err, "step %d (%s) failed", i+1, action)
		}
		results = append(results, res)
	}
	return results, nil
}

// DeletedColumns lists the columns the types section drops, sorted.
func (p *Plan) DeletedColumns() []string {
	var out []string
	for col, typ := range p.Types {
		if c, err := table.ParseCoercion(typ); err == nil && c == table.Delete {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}
