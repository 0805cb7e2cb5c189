package features

import (
	"strings"
	"unicode/utf8"

	"github.com/ngocminh/spam-sentinel/internal/core"
	"github.com/ngocminh/spam-sentinel/internal/textnorm"
)

// Extractor derives the fixed numeric feature vector from a raw message.
// It is pure: repeated calls on the same text return identical vectors.
type Extractor struct {
	normalizer *textnorm.Normalizer
}

// NewExtractor creates a new Extractor.
func NewExtractor(normalizer *textnorm.Normalizer) *Extractor {
	return &Extractor{normalizer: normalizer}
}

// Extract computes the four features in their fixed order: character count
// and word count of the raw text, sentence count of the raw text, and word
// count of the normalized text.
func (e *Extractor) Extract(rawText string) core.FeatureVector {
	cleaned := e.normalizer.Clean(rawText)

	return core.FeatureVector{
		NumChar:            utf8.RuneCountInString(rawText),
		NumWord:            len(strings.Fields(rawText)),
		NumSentence:        textnorm.SentenceCount(rawText),
		NumWordsAfterClean: len(strings.Fields(cleaned)),
	}
}

// ExtractBatch extracts features for every text, preserving input order.
func (e *Extractor) ExtractBatch(texts []string) []core.FeatureVector {
	vectors := make([]core.FeatureVector, len(texts))
	for i, t := range texts {
		vectors[i] = e.Extract(t)
	}
	return vectors
}
