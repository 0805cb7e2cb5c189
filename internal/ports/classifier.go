package ports

import (
	"github.com/ngocminh/spam-sentinel/internal/core"
)

// MessageClassifier labels a single message under a named model. Model-level
// failures (unknown name, missing artifact) come back as errors; inference
// failures collapse to core.LabelError with a nil error.
type MessageClassifier interface {
	ClassifyOne(message, modelName string) (core.Label, error)
}
