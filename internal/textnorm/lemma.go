package textnorm

import (
	"strings"
)

// irregularLemmas maps irregular noun forms that the suffix rules cannot
// reach to their dictionary lemma.
var irregularLemmas = map[string]string{
	"men":      "man",
	"women":    "woman",
	"children": "child",
	"feet":     "foot",
	"teeth":    "tooth",
	"geese":    "goose",
	"mice":     "mouse",
	"lives":    "life",
	"wives":    "wife",
	"knives":   "knife",
	"leaves":   "leaf",
	"halves":   "half",
	"shelves":  "shelf",
}

// lemmatize reduces a lowercase token to its dictionary lemma using noun
// morphology rules. It is a fixed point: lemmatize(lemmatize(w)) == lemmatize(w).
func lemmatize(w string) string {
	if lemma, ok := irregularLemmas[w]; ok {
		return lemma
	}
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "zes"),
		strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"),
		strings.HasSuffix(w, "is"):
		return w
	case len(w) >= 4 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
