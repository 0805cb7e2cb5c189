package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/core"
	"github.com/ngocminh/spam-sentinel/internal/features"
	"github.com/ngocminh/spam-sentinel/internal/registry"
	"github.com/ngocminh/spam-sentinel/internal/textnorm"
)

const (
	spamMessage = "FREE!!! Click http://x.biz now to claim $$$ 1000000"
	hamMessage  = "Hi team, attaching the quarterly report as discussed."
)

// newFixtureEngine builds an engine over artifacts fitted to flag
// promotional terms (free/click/claim) and clear business terms
// (report/quarterly/team).
func newFixtureEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()

	vectorizer := &registry.TermVectorizer{
		Vocabulary: map[string]int{
			"free": 0, "click": 1, "claim": 2,
			"report": 3, "quarterly": 4, "team": 5,
		},
		IDF: []float64{2.0, 1.5, 1.5, 1.0, 1.0, 1.0},
	}
	scaler := &registry.FeatureScaler{
		DataMin:   [4]float64{0, 0, 0, 0},
		DataRange: [4]float64{500, 100, 10, 100},
	}
	require.NoError(t, registry.WriteArtifact(filepath.Join(dir, "preprocessors", "tfidf_vectorizer.gob"), vectorizer))
	require.NoError(t, registry.WriteArtifact(filepath.Join(dir, "preprocessors", "feature_scaler.gob"), scaler))

	promoLinear := &registry.LinearModel{
		TermWeights: map[int]float64{0: 2.0, 1: 1.0, 2: 1.0, 3: -2.0, 4: -1.0, 5: -1.0},
		Bias:        -0.2,
	}
	freeTree := &registry.DecisionTree{Nodes: []registry.TreeNode{
		{Feature: 0, Threshold: 0.1, Left: 1, Right: 2},
		{Leaf: true, Class: 0},
		{Leaf: true, Class: 1},
	}}
	secondLinear := &registry.LinearModel{
		TermWeights: map[int]float64{0: 1.0, 2: 1.0, 3: -1.0},
		Bias:        -0.1,
	}

	var voting registry.Predictor = &registry.VotingEnsemble{
		Members: []registry.Predictor{promoLinear, freeTree, secondLinear},
	}
	require.NoError(t, registry.WriteArtifact(filepath.Join(dir, "classifiers", "voting_model.gob"), &voting))

	var clf registry.Predictor = promoLinear
	require.NoError(t, registry.WriteArtifact(filepath.Join(dir, "classifiers", "clf_model.gob"), &clf))

	// A deliberately malformed artifact: decodes fine, fails at inference.
	var broken registry.Predictor = &registry.DecisionTree{}
	require.NoError(t, registry.WriteArtifact(filepath.Join(dir, "classifiers", "dt_model.gob"), &broken))

	reg, err := registry.New(dir, zap.NewNop())
	require.NoError(t, err)

	normalizer := textnorm.NewNormalizer(zap.NewNop())
	return New(reg, normalizer, features.NewExtractor(normalizer), zap.NewNop())
}

func TestClassifyOneSpamScenario(t *testing.T) {
	e := newFixtureEngine(t)

	label, err := e.ClassifyOne(spamMessage, "Voting Classifier")
	require.NoError(t, err)
	assert.Equal(t, core.LabelSpam, label)
}

func TestClassifyOneHamScenario(t *testing.T) {
	e := newFixtureEngine(t)

	label, err := e.ClassifyOne(hamMessage, "Voting Classifier")
	require.NoError(t, err)
	assert.Equal(t, core.LabelHam, label)
}

func TestClassifyOneUnknownModel(t *testing.T) {
	e := newFixtureEngine(t)

	label, err := e.ClassifyOne(spamMessage, "Nonexistent Model")
	assert.ErrorIs(t, err, registry.ErrUnknownModel)
	assert.Equal(t, core.LabelError, label)
}

func TestClassifyOneMissingArtifact(t *testing.T) {
	e := newFixtureEngine(t)

	label, err := e.ClassifyOne(spamMessage, "SVM")
	assert.ErrorIs(t, err, registry.ErrArtifactMissing)
	assert.Equal(t, core.LabelError, label)
}

func TestClassifyOneInferenceFailureIsIsolated(t *testing.T) {
	e := newFixtureEngine(t)

	// The decision tree artifact is malformed; the failure surfaces as
	// LabelError, not an error.
	label, err := e.ClassifyOne(spamMessage, "Decision Tree")
	require.NoError(t, err)
	assert.Equal(t, core.LabelError, label)
}

func TestClassifyOneLabelDomain(t *testing.T) {
	e := newFixtureEngine(t)

	inputs := []string{"", spamMessage, hamMessage, "   ", "<html></html>", "xyzzy"}
	models := []string{"Voting Classifier", "Classifier", "Decision Tree"}
	for _, msg := range inputs {
		for _, model := range models {
			label, _ := e.ClassifyOne(msg, model)
			assert.Contains(t, []core.Label{core.LabelSpam, core.LabelHam, core.LabelError}, label)
		}
	}
}

func TestClassifyBatchOrderAndLength(t *testing.T) {
	e := newFixtureEngine(t)

	messages := []string{spamMessage, hamMessage, spamMessage, ""}
	labels, err := e.ClassifyBatch(messages, "Voting Classifier")
	require.NoError(t, err)
	require.Len(t, labels, len(messages))
	assert.Equal(t, core.LabelSpam, labels[0])
	assert.Equal(t, core.LabelHam, labels[1])
	assert.Equal(t, core.LabelSpam, labels[2])
}

func TestClassifyBatchFailureIsAtomic(t *testing.T) {
	e := newFixtureEngine(t)

	_, err := e.ClassifyBatch([]string{spamMessage, hamMessage}, "Decision Tree")
	var batchErr *BatchInferenceError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "Decision Tree", batchErr.ModelName)
}

func TestClassifyMultiModelIsolatesFailures(t *testing.T) {
	e := newFixtureEngine(t)

	outcomes := e.ClassifyMultiModel(spamMessage, []string{"Voting Classifier", "SVM", "Decision Tree"})
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes["Voting Classifier"].Err)
	assert.Equal(t, core.LabelSpam, outcomes["Voting Classifier"].Label)

	assert.ErrorIs(t, outcomes["SVM"].Err, registry.ErrArtifactMissing)
	assert.Equal(t, core.LabelError, outcomes["SVM"].Label)

	assert.NoError(t, outcomes["Decision Tree"].Err)
	assert.Equal(t, core.LabelError, outcomes["Decision Tree"].Label)
}
