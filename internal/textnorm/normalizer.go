package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

var (
	htmlTagPattern = regexp.MustCompile(`<.*?>`)
	urlPattern     = regexp.MustCompile(`http\S+`)
	digitPattern   = regexp.MustCompile(`[0-9]+`)
	emailPattern   = regexp.MustCompile(`\S*@\S*\s?`)
)

// wordPattern may be nil if compilation failed; Clean then falls back to a
// naive whitespace split so normalization never fails.
var wordPattern, _ = regexp.Compile(`\pL+`)

// Normalizer cleans free text into the normalized form the term vectorizer
// was fitted on. Clean is a total function: any input yields a string, and
// re-cleaning cleaned text yields the same string.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Clean applies the normalization pipeline in fixed order: strip HTML tags,
// URLs, digit runs and email-like tokens, lowercase, tokenize, keep purely
// alphabetic tokens, drop stopwords, lemmatize, join with single spaces.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTagPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = strings.ToLower(text)

	words := tokenize(text)

	kept := words[:0]
	for _, w := range words {
		if !isAlphabetic(w) {
			continue
		}
		if _, stop := englishStopwords[w]; stop {
			continue
		}
		kept = append(kept, lemmatize(w))
	}

	return strings.Join(kept, " ")
}

// CleanBatch cleans texts in order.
func (n *Normalizer) CleanBatch(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = n.Clean(t)
	}
	return cleaned
}

// tokenize splits text into word tokens, falling back to a whitespace split
// when the primary tokenizer is unavailable.
func tokenize(text string) []string {
	if wordPattern != nil {
		return wordPattern.FindAllString(text, -1)
	}
	return strings.Fields(text)
}

func isAlphabetic(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// SentenceCount counts sentence-terminated units in raw text. A run of
// terminators ends a sentence only when followed by whitespace or the end of
// the text, so dotted tokens such as hostnames do not split. Trailing text
// without a terminator counts as one sentence.
func SentenceCount(text string) int {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return 0
	}

	count := 0
	inSentence := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '.' || r == '!' || r == '?' {
			j := i
			for j+1 < len(runes) && isTerminator(runes[j+1]) {
				j++
			}
			if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
				if inSentence {
					count++
					inSentence = false
				}
			} else {
				inSentence = true
			}
			i = j
			continue
		}
		if !unicode.IsSpace(r) {
			inSentence = true
		}
	}
	if inSentence {
		count++
	}
	return count
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
