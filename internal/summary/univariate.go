// Package summary computes descriptive statistics and the bivariate tests
// offered for column pairs.
package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"goeda/domain/table"
	"goeda/internal/classifier"
)

// DefaultHighCardinality is the distinct-value count above which a
// categorical column gets a warning.
const DefaultHighCardinality = 50

// DefaultMinGroupSize is the smallest group Kruskal-Wallis accepts.
const DefaultMinGroupSize = 2

// Record is one row of the statistics table. Numeric columns produce one
// record with the moment fields set, categorical columns one record per
// distinct value, temporal columns one record with the range set.
type Record struct {
	Variable   string             `json:"variable"`
	Semantic   table.SemanticType `json:"semantic"`
	Mean       *float64           `json:"mean,omitempty"`
	Median     *float64           `json:"median,omitempty"`
	StdDev     *float64           `json:"std_dev,omitempty"`
	Min        *float64           `json:"min,omitempty"`
	Max        *float64           `json:"max,omitempty"`
	Value      *string            `json:"value,omitempty"`
	Count      int                `json:"count"`
	Percentage *float64           `json:"percentage,omitempty"`
	Earliest   *time.Time         `json:"earliest,omitempty"`
	Latest     *time.Time         `json:"latest,omitempty"`
}

// Summary is the result of Summarize.
type Summary struct {
	Records  []Record `json:"records"`
	Warnings []string `json:"warnings,omitempty"`
}

// Summarizer computes statistics records and pairwise tests.
type Summarizer struct {
	MinGroupSize    int
	HighCardinality int
}

// NewSummarizer returns a summarizer with the default thresholds.
func NewSummarizer() *Summarizer {
	return &Summarizer{
		MinGroupSize:    DefaultMinGroupSize,
		HighCardinality: DefaultHighCardinality,
	}
}

// Summarize computes records for the given columns in the given order. An
// empty list summarizes every column.
func (s *Summarizer) Summarize(t *table.Table, columns []string) (*Summary, error) {
	if len(columns) == 0 {
		columns = t.Names()
	}
	out := &Summary{Records: []Record{}}
	for _, name := range columns {
		sem, err := classifier.Classify(t, name)
		if err != nil {
			return nil, err
		}
		col, _ := t.Column(name)
		switch sem {
		case table.Numeric:
			out.Records = append(out.Records, numericRecord(col))
		case table.Categorical:
			recs := categoricalRecords(col)
			if s.HighCardinality > 0 && len(recs) > s.HighCardinality {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("%s has %d distinct values; the frequency table may be hard to read", name, len(recs)))
			}
			out.Records = append(out.Records, recs...)
		case table.Temporal:
			out.Records = append(out.Records, temporalRecord(col))
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func numericRecord(col table.Column) Record {
	rec := Record{Variable: col.Name, Semantic: table.Numeric}
	xs := col.Floats()
	rec.Count = len(xs)
	if len(xs) == 0 {
		return rec
	}
	mean, _ := stats.Mean(xs)
	median, _ := stats.Median(xs)
	minV, _ := stats.Min(xs)
	maxV, _ := stats.Max(xs)
	rec.Mean, rec.Median, rec.Min, rec.Max = &mean, &median, &minV, &maxV
	if len(xs) >= 2 {
		sd, err := stats.StandardDeviationSample(xs)
		if err == nil {
			rec.StdDev = &sd
		}
	}
	return rec
}

// categoricalRecords counts distinct values. Percentages use the full row
// count, nulls included. Order is descending count, ties by first
// appearance.
func categoricalRecords(col table.Column) []Record {
	type bucket struct {
		value string
		count int
	}
	idx := make(map[string]int)
	var buckets []bucket
	for _, v := range col.Cells {
		if v.IsNull() {
			continue
		}
		key := v.String()
		if j, ok := idx[key]; ok {
			buckets[j].count++
			continue
		}
		idx[key] = len(buckets)
		buckets = append(buckets, bucket{value: key, count: 1})
	}
	sort.SliceStable(buckets, func(a, b int) bool {
		return buckets[a].count > buckets[b].count
	})

	total := float64(col.Len())
	recs := make([]Record, 0, len(buckets))
	for _, b := range buckets {
		recs = append(recs, Record{
			Variable:   col.Name,
			Semantic:   table.Categorical,
			Value:      ptr(b.value),
			Count:      b.count,
			Percentage: ptr(100 * float64(b.count) / total),
		})
	}
	return recs
}

func temporalRecord(col table.Column) Record {
	rec := Record{Variable: col.Name, Semantic: table.Temporal}
	for _, v := range col.Cells {
		ts, ok := v.Time()
		if !ok {
			continue
		}
		rec.Count++
		if rec.Earliest == nil || ts.Before(*rec.Earliest) {
			rec.Earliest = ptr(ts)
		}
		if rec.Latest == nil || ts.After(*rec.Latest) {
			rec.Latest = ptr(ts)
		}
	}
	return rec
}
