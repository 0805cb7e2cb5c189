package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/core"
	"github.com/ngocminh/spam-sentinel/internal/features"
	"github.com/ngocminh/spam-sentinel/internal/registry"
	"github.com/ngocminh/spam-sentinel/internal/textnorm"
)

// BatchInferenceError reports a failed batch prediction. The underlying
// model call is atomic over the batch, so no partial results exist; callers
// needing partial results must fall back to per-message classification.
type BatchInferenceError struct {
	ModelName string
	Err       error
}

func (e *BatchInferenceError) Error() string {
	return fmt.Sprintf("batch inference failed for model %q: %v", e.ModelName, e.Err)
}

func (e *BatchInferenceError) Unwrap() error { return e.Err }

// ModelOutcome is one model's result in a multi-model fan-out. Err is set
// alongside core.LabelError when that model failed; other models are
// unaffected.
type ModelOutcome struct {
	Label core.Label
	Err   error
}

// Engine composes normalization, vectorization, feature extraction and
// model inference into message classification.
type Engine struct {
	registry   *registry.Registry
	normalizer *textnorm.Normalizer
	extractor  *features.Extractor
	logger     *zap.Logger
}

// New creates a classification engine on top of a warmed-up registry.
func New(reg *registry.Registry, normalizer *textnorm.Normalizer, extractor *features.Extractor, logger *zap.Logger) *Engine {
	return &Engine{
		registry:   reg,
		normalizer: normalizer,
		extractor:  extractor,
		logger:     logger,
	}
}

// ClassifyOne labels a single message under the named model. Unknown-model
// and missing/corrupt-artifact failures are returned as errors; any other
// inference failure is confined to this (message, model) pair and comes
// back as core.LabelError with a nil error.
func (e *Engine) ClassifyOne(message, modelName string) (core.Label, error) {
	predictor, err := e.registry.LoadClassifier(modelName)
	if err != nil {
		return core.LabelError, err
	}

	rows := e.buildRows([]string{message})

	preds, err := safePredict(predictor, rows)
	if err != nil {
		e.logger.Warn("Inference failed",
			zap.String("model", modelName),
			zap.Error(err))
		return core.LabelError, nil
	}
	if len(preds) != 1 {
		e.logger.Warn("Model returned unexpected prediction count",
			zap.String("model", modelName),
			zap.Int("count", len(preds)))
		return core.LabelError, nil
	}

	return toLabel(preds[0]), nil
}

// ClassifyBatch labels messages in one model call. Output order matches
// input order. A failure inside the model call fails the whole batch with a
// *BatchInferenceError.
func (e *Engine) ClassifyBatch(messages []string, modelName string) ([]core.Label, error) {
	predictor, err := e.registry.LoadClassifier(modelName)
	if err != nil {
		return nil, err
	}

	rows := e.buildRows(messages)

	preds, err := safePredict(predictor, rows)
	if err != nil {
		return nil, &BatchInferenceError{ModelName: modelName, Err: err}
	}
	if len(preds) != len(messages) {
		return nil, &BatchInferenceError{
			ModelName: modelName,
			Err:       fmt.Errorf("model returned %d predictions for %d messages", len(preds), len(messages)),
		}
	}

	labels := make([]core.Label, len(preds))
	for i, p := range preds {
		labels[i] = toLabel(p)
	}
	return labels, nil
}

// ClassifyMultiModel fans a single message out across each requested model
// independently. One model's failure never affects another's result.
func (e *Engine) ClassifyMultiModel(message string, modelNames []string) map[string]ModelOutcome {
	outcomes := make(map[string]ModelOutcome, len(modelNames))
	for _, name := range modelNames {
		label, err := e.ClassifyOne(message, name)
		outcomes[name] = ModelOutcome{Label: label, Err: err}
	}
	return outcomes
}

// buildRows runs the full preprocessing pipeline: normalize, vectorize the
// normalized text, extract and scale the numeric features of the raw text,
// then concatenate term columns first and scaled numeric columns last —
// the column order the preprocessors were fitted with.
func (e *Engine) buildRows(messages []string) []registry.FeatureRow {
	cleaned := e.normalizer.CleanBatch(messages)
	termRows := e.registry.Vectorizer().Transform(cleaned)

	vectors := e.extractor.ExtractBatch(messages)
	numeric := make([][4]float64, len(vectors))
	for i, v := range vectors {
		numeric[i] = v.Values()
	}
	scaled := e.registry.Scaler().Transform(numeric)

	width := e.registry.Vectorizer().Width()
	rows := make([]registry.FeatureRow, len(messages))
	for i := range messages {
		rows[i] = registry.FeatureRow{
			Terms:     termRows[i],
			Numeric:   scaled[i],
			TermWidth: width,
		}
	}
	return rows
}

// safePredict invokes the opaque predictor and converts panics from a
// malformed artifact into errors so a bad model cannot take down the caller.
func safePredict(p registry.Predictor, rows []registry.FeatureRow) (preds []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			preds = nil
			err = fmt.Errorf("predictor panicked: %v", r)
		}
	}()
	return p.Predict(rows)
}

func toLabel(pred int) core.Label {
	if pred == 1 {
		return core.LabelSpam
	}
	return core.LabelHam
}
