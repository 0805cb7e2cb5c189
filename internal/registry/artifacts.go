package registry

import (
	"encoding/gob"
	"fmt"
	"math"
	"sort"
	"strings"
)

// FeatureRow is one combined feature row: the sparse term-vector columns
// first, then the four scaled numeric columns. TermWidth is the fitted
// vocabulary size; numeric columns start at that offset.
type FeatureRow struct {
	Terms     map[int]float64
	Numeric   [4]float64
	TermWidth int
}

// At returns the value of a combined column.
func (r FeatureRow) At(col int) float64 {
	if col < r.TermWidth {
		return r.Terms[col]
	}
	return r.Numeric[col-r.TermWidth]
}

// Predictor is the single capability every classifier artifact exposes.
// Outputs are binary: 0 for ham, 1 for spam.
type Predictor interface {
	Predict(rows []FeatureRow) ([]int, error)
}

func init() {
	gob.Register(&LinearModel{})
	gob.Register(&DecisionTree{})
	gob.Register(&RandomForest{})
	gob.Register(&KNearestNeighbors{})
	gob.Register(&VotingEnsemble{})
	gob.Register(&TermVectorizer{})
	gob.Register(&FeatureScaler{})
}

// TermVectorizer is a fitted TF-IDF transform over a fixed vocabulary.
type TermVectorizer struct {
	// Vocabulary maps a normalized term to its column index.
	Vocabulary map[string]int
	// IDF holds the inverse document frequency per column.
	IDF []float64
}

// Width returns the number of term columns.
func (v *TermVectorizer) Width() int {
	return len(v.IDF)
}

// Transform maps normalized texts to sparse l2-normalized TF-IDF rows,
// preserving input order.
func (v *TermVectorizer) Transform(cleaned []string) []map[int]float64 {
	rows := make([]map[int]float64, len(cleaned))
	for i, text := range cleaned {
		row := make(map[int]float64)
		for _, term := range strings.Fields(text) {
			if col, ok := v.Vocabulary[term]; ok {
				row[col] += v.IDF[col]
			}
		}
		l2Normalize(row)
		rows[i] = row
	}
	return rows
}

func l2Normalize(row map[int]float64) {
	var sum float64
	for _, val := range row {
		sum += val * val
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for col, val := range row {
		row[col] = val / norm
	}
}

// FeatureScaler is a fitted min-max transform over the four numeric
// text-statistics features.
type FeatureScaler struct {
	DataMin   [4]float64
	DataRange [4]float64
}

// Transform scales rows in input order. A zero fitted range leaves the
// column at zero.
func (s *FeatureScaler) Transform(rows [][4]float64) [][4]float64 {
	scaled := make([][4]float64, len(rows))
	for i, row := range rows {
		for j, val := range row {
			if s.DataRange[j] != 0 {
				scaled[i][j] = (val - s.DataMin[j]) / s.DataRange[j]
			}
		}
	}
	return scaled
}

// LinearModel is a linear decision function over the combined columns:
// sparse term weights plus four numeric weights and a bias. Positive score
// predicts spam.
type LinearModel struct {
	TermWeights    map[int]float64
	NumericWeights [4]float64
	Bias           float64
}

func (m *LinearModel) Predict(rows []FeatureRow) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		score := m.Bias
		for col, weight := range m.TermWeights {
			score += weight * row.Terms[col]
		}
		for j, weight := range m.NumericWeights {
			score += weight * row.Numeric[j]
		}
		if score > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// TreeNode is one node of a fitted decision tree. Leaf nodes carry the
// predicted class; internal nodes split a combined column on a threshold.
type TreeNode struct {
	Leaf      bool
	Class     int
	Feature   int
	Threshold float64
	Left      int
	Right     int
}

// DecisionTree is a fitted tree over the combined columns.
type DecisionTree struct {
	Nodes []TreeNode
}

func (t *DecisionTree) Predict(rows []FeatureRow) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		class, err := t.predictRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = class
	}
	return out, nil
}

func (t *DecisionTree) predictRow(row FeatureRow) (int, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("decision tree has no nodes")
	}
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("decision tree node index %d out of range", idx)
		}
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Class, nil
		}
		if row.At(node.Feature) <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("decision tree traversal did not terminate")
}

// RandomForest predicts by majority vote over its trees.
type RandomForest struct {
	Trees []DecisionTree
}

func (f *RandomForest) Predict(rows []FeatureRow) ([]int, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	votes := make([]int, len(rows))
	for ti := range f.Trees {
		preds, err := f.Trees[ti].Predict(rows)
		if err != nil {
			return nil, err
		}
		for i, p := range preds {
			votes[i] += p
		}
	}
	out := make([]int, len(rows))
	for i, v := range votes {
		if 2*v > len(f.Trees) {
			out[i] = 1
		}
	}
	return out, nil
}

// KNNSample is one stored training sample of a fitted nearest-neighbors
// model.
type KNNSample struct {
	Terms   map[int]float64
	Numeric [4]float64
	Class   int
}

// KNearestNeighbors predicts by majority class among the K nearest stored
// samples under euclidean distance over the combined columns.
type KNearestNeighbors struct {
	K       int
	Samples []KNNSample
}

func (m *KNearestNeighbors) Predict(rows []FeatureRow) ([]int, error) {
	if m.K <= 0 || len(m.Samples) == 0 {
		return nil, fmt.Errorf("nearest-neighbors model is empty")
	}
	out := make([]int, len(rows))
	for i, row := range rows {
		type neighbor struct {
			dist  float64
			class int
		}
		neighbors := make([]neighbor, len(m.Samples))
		for si, sample := range m.Samples {
			neighbors[si] = neighbor{dist: distance(row, sample), class: sample.Class}
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

		k := m.K
		if k > len(neighbors) {
			k = len(neighbors)
		}
		spam := 0
		for _, n := range neighbors[:k] {
			spam += n.class
		}
		if 2*spam > k {
			out[i] = 1
		}
	}
	return out, nil
}

func distance(row FeatureRow, sample KNNSample) float64 {
	var sum float64
	seen := make(map[int]struct{}, len(row.Terms))
	for col, val := range row.Terms {
		seen[col] = struct{}{}
		d := val - sample.Terms[col]
		sum += d * d
	}
	for col, val := range sample.Terms {
		if _, ok := seen[col]; ok {
			continue
		}
		sum += val * val
	}
	for j := range row.Numeric {
		d := row.Numeric[j] - sample.Numeric[j]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// VotingEnsemble combines member predictors by hard majority vote.
type VotingEnsemble struct {
	Members []Predictor
}

func (e *VotingEnsemble) Predict(rows []FeatureRow) ([]int, error) {
	if len(e.Members) == 0 {
		return nil, fmt.Errorf("voting ensemble has no members")
	}
	votes := make([]int, len(rows))
	for _, member := range e.Members {
		preds, err := member.Predict(rows)
		if err != nil {
			return nil, err
		}
		if len(preds) != len(rows) {
			return nil, fmt.Errorf("ensemble member returned %d predictions for %d rows", len(preds), len(rows))
		}
		for i, p := range preds {
			votes[i] += p
		}
	}
	out := make([]int, len(rows))
	for i, v := range votes {
		if 2*v > len(e.Members) {
			out[i] = 1
		}
	}
	return out, nil
}
