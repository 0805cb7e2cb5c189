package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClean(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "html tags stripped",
			in:   "<p>Hello <b>World</b></p>",
			want: "hello world",
		},
		{
			name: "urls stripped",
			in:   "Click http://example.com/win for prizes",
			want: "click prize",
		},
		{
			name: "digits stripped",
			in:   "You won 1000000 dollars",
			want: "dollar",
		},
		{
			name: "email addresses stripped",
			in:   "Contact winner@scam.biz today",
			want: "contact today",
		},
		{
			name: "stopwords dropped",
			in:   "this is the only offer for you",
			want: "offer",
		},
		{
			name: "lemmatized plural nouns",
			in:   "prizes ladies boxes children",
			want: "prize lady box child",
		},
		{
			name: "contractions collapse into stopwords",
			in:   "don't you think we'll win",
			want: "think win",
		},
		{
			name: "punctuation-only tokens dropped",
			in:   "win $$$ !!! now",
			want: "win",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	corpus := []string{
		"FREE!!! Click http://x.biz now to claim $$$ 1000000",
		"Hi team, attaching the quarterly report as discussed.",
		"<html><body>Dear customer, your account 12345 needs verification at http://phish.example</body></html>",
		"Congratulations! You have been selected for a FREE cruise. Reply to claim@win.example now!",
		"Meeting moved to Tuesday. Agenda attached, please review the figures beforehand.",
		"",
		"    ",
		"ñandú straße café",
	}

	for _, text := range corpus {
		once := n.Clean(text)
		twice := n.Clean(once)
		assert.Equal(t, once, twice, "Clean must be idempotent for %q", text)
	}
}

func TestCleanBatchPreservesOrder(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	in := []string{"first message here", "second message here", "third message here"}
	out := n.CleanBatch(in)

	assert.Len(t, out, len(in))
	for i, text := range in {
		assert.Equal(t, n.Clean(text), out[i])
	}
}

func TestSentenceCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"Hello world", 1},
		{"Hello. World.", 2},
		{"One! Two? Three.", 3},
		{"FREE!!! Click http://x.biz now to claim $$$ 1000000", 2},
		{"Trailing text without terminator", 1},
		{"ends with run!!!", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SentenceCount(tt.in), "input %q", tt.in)
	}
}

func TestLemmatizeFixedPoint(t *testing.T) {
	words := []string{
		"prizes", "ladies", "boxes", "churches", "wishes", "classes",
		"children", "men", "women", "feet", "mice", "lives",
		"bus", "kiss", "analysis", "gas", "cat", "win",
	}
	for _, w := range words {
		once := lemmatize(w)
		assert.Equal(t, once, lemmatize(once), "lemma of %q must be stable", w)
	}
}
