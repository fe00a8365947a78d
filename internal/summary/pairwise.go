package summary

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"goeda/domain/table"
	"goeda/internal/classifier"
)

// TestKind names the bivariate test chosen for a column pair.
type TestKind string

const (
	Pearson       TestKind = "pearson"
	ChiSquare     TestKind = "chi_square"
	KruskalWallis TestKind = "kruskal_wallis"
)

// Contingency is the cross tabulation behind a chi-square test.
type Contingency struct {
	Rows   []string `json:"rows"`
	Cols   []string `json:"cols"`
	Counts [][]int  `json:"counts"`
}

// GroupSummary describes one level of the categorical variable in a
// Kruskal-Wallis test.
type GroupSummary struct {
	Level    string  `json:"level"`
	N        int     `json:"n"`
	Median   float64 `json:"median"`
	MeanRank float64 `json:"mean_rank"`
}

// PairResult is the outcome of a pairwise test. When Computable is false
// Reason says why and the numeric fields are zero.
type PairResult struct {
	A           string         `json:"a"`
	B           string         `json:"b"`
	Kind        TestKind       `json:"kind"`
	Computable  bool           `json:"computable"`
	Reason      string         `json:"reason,omitempty"`
	N           int            `json:"n"`
	Statistic   float64        `json:"statistic"`
	PValue      float64        `json:"p_value"`
	DF          int            `json:"df,omitempty"`
	Contingency *Contingency   `json:"contingency,omitempty"`
	Groups      []GroupSummary `json:"groups,omitempty"`
}

// isCategorical collapses the semantic types: anything that is not text is
// analysed as a number.
func isCategorical(sem table.SemanticType) bool {
	return sem == table.Categorical
}

// SummarizePairwise picks the test from the two semantic types and runs it
// on the rows where both values are present.
func (s *Summarizer) SummarizePairwise(t *table.Table, a, b string) (PairResult, error) {
	semA, err := classifier.Classify(t, a)
	if err != nil {
		return PairResult{}, err
	}
	semB, err := classifier.Classify(t, b)
	if err != nil {
		return PairResult{}, err
	}
	colA, _ := t.Column(a)
	colB, _ := t.Column(b)

	catA, catB := isCategorical(semA), isCategorical(semB)
	switch {
	case !catA && !catB:
		return pearson(colA, colB), nil
	case catA && catB:
		return chiSquare(colA, colB), nil
	case catA:
		res := s.kruskalWallis(colB, colA)
		res.A, res.B = a, b
		return res, nil
	default:
		return s.kruskalWallis(colA, colB), nil
	}
}

func notComputable(res PairResult, reason string) PairResult {
	res.Computable = false
	res.Reason = reason
	res.Statistic, res.PValue, res.DF = 0, 0, 0
	return res
}

func pearson(a, b table.Column) PairResult {
	res := PairResult{A: a.Name, B: b.Name, Kind: Pearson}
	var xs, ys []float64
	for i := range a.Cells {
		x, okX := a.Cells[i].Float()
		y, okY := b.Cells[i].Float()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	res.N = len(xs)
	if res.N < 3 {
		return notComputable(res, fmt.Sprintf("need at least 3 complete pairs, have %d", res.N))
	}
	if constant(xs) || constant(ys) {
		return notComputable(res, "one of the variables has zero variance")
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil || math.IsNaN(r) {
		return notComputable(res, "correlation is undefined for these values")
	}
	res.Computable = true
	res.Statistic = r
	res.DF = res.N - 2
	res.PValue = correlationPValue(r, res.N)
	return res
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// levels returns distinct values in first-appearance order and an index.
func levels(vals []string) ([]string, map[string]int) {
	idx := make(map[string]int)
	var out []string
	for _, v := range vals {
		if _, ok := idx[v]; !ok {
			idx[v] = len(out)
			out = append(out, v)
		}
	}
	return out, idx
}

// chiSquare runs Pearson's test of independence without continuity
// correction.
func chiSquare(a, b table.Column) PairResult {
	res := PairResult{A: a.Name, B: b.Name, Kind: ChiSquare}
	var as, bs []string
	for i := range a.Cells {
		if a.Cells[i].IsNull() || b.Cells[i].IsNull() {
			continue
		}
		as = append(as, a.Cells[i].String())
		bs = append(bs, b.Cells[i].String())
	}
	res.N = len(as)
	rows, rowIdx := levels(as)
	cols, colIdx := levels(bs)
	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for i := range as {
		counts[rowIdx[as[i]]][colIdx[bs[i]]]++
	}
	res.Contingency = &Contingency{Rows: rows, Cols: cols, Counts: counts}

	if res.N < 3 {
		return notComputable(res, fmt.Sprintf("need at least 3 complete pairs, have %d", res.N))
	}
	if len(rows) < 2 || len(cols) < 2 {
		return notComputable(res, "both variables need at least 2 levels")
	}

	rowTot := make([]float64, len(rows))
	colTot := make([]float64, len(cols))
	for i := range counts {
		for j, c := range counts[i] {
			rowTot[i] += float64(c)
			colTot[j] += float64(c)
		}
	}
	n := float64(res.N)
	var chi float64
	for i := range counts {
		for j, c := range counts[i] {
			expected := rowTot[i] * colTot[j] / n
			d := float64(c) - expected
			chi += d * d / expected
		}
	}
	res.Computable = true
	res.Statistic = chi
	res.DF = (len(rows) - 1) * (len(cols) - 1)
	res.PValue = chiSquarePValue(chi, res.DF)
	return res
}

// kruskalWallis ranks the numeric column across all groups of the
// categorical column. H carries the tie correction.
func (s *Summarizer) kruskalWallis(num, cat table.Column) PairResult {
	res := PairResult{A: num.Name, B: cat.Name, Kind: KruskalWallis}
	type obs struct {
		x     float64
		group int
		rank  float64
	}
	var (
		data   []obs
		labels []string
	)
	for i := range num.Cells {
		x, ok := num.Cells[i].Float()
		if !ok || cat.Cells[i].IsNull() {
			continue
		}
		labels = append(labels, cat.Cells[i].String())
		data = append(data, obs{x: x})
	}
	groupNames, groupIdx := levels(labels)
	for i := range data {
		data[i].group = groupIdx[labels[i]]
	}
	res.N = len(data)

	sizes := make([]int, len(groupNames))
	for _, o := range data {
		sizes[o.group]++
	}
	minSize := s.MinGroupSize
	if minSize < 1 {
		minSize = 1
	}

	if res.N < 3 {
		return notComputable(res, fmt.Sprintf("need at least 3 complete pairs, have %d", res.N))
	}
	if len(groupNames) < 2 {
		return notComputable(res, "the categorical variable needs at least 2 levels")
	}
	for g, n := range sizes {
		if n < minSize {
			return notComputable(res, fmt.Sprintf("group %q has %d observations, need at least %d", groupNames[g], n, minSize))
		}
	}

	order := make([]int, len(data))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return data[order[i]].x < data[order[j]].x })

	var tieSum float64
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && data[order[j+1]].x == data[order[i]].x {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			data[order[k]].rank = avg
		}
		if t := float64(j - i + 1); t > 1 {
			tieSum += t*t*t - t
		}
		i = j + 1
	}

	N := float64(res.N)
	correction := 1 - tieSum/(N*N*N-N)
	if correction <= 0 {
		return notComputable(res, "all values are tied")
	}

	rankSums := make([]float64, len(groupNames))
	values := make([][]float64, len(groupNames))
	for _, o := range data {
		rankSums[o.group] += o.rank
		values[o.group] = append(values[o.group], o.x)
	}
	var h float64
	for g := range groupNames {
		h += rankSums[g] * rankSums[g] / float64(sizes[g])
	}
	h = (12/(N*(N+1))*h - 3*(N+1)) / correction

	res.Groups = make([]GroupSummary, len(groupNames))
	for g, name := range groupNames {
		med, _ := stats.Median(values[g])
		res.Groups[g] = GroupSummary{
			Level:    name,
			N:        sizes[g],
			Median:   med,
			MeanRank: rankSums[g] / float64(sizes[g]),
		}
	}

	res.Computable = true
	res.Statistic = h
	res.DF = len(groupNames) - 1
	res.PValue = chiSquarePValue(h, res.DF)
	return res
}
