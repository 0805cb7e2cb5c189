package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{"Example.com", " trusted.org "}, zap.NewNop())

	tests := []struct {
		name string
		from string
		want bool
	}{
		{"bare address match", "alice@example.com", true},
		{"case insensitive", "alice@EXAMPLE.COM", true},
		{"display name form", "Alice <alice@example.com>", true},
		{"escaped display name form", "Alice &lt;alice@trusted.org&gt;", true},
		{"non-whitelisted domain", "bob@other.com", false},
		{"missing at sign", "not-an-address", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsWhitelisted(tt.from))
		})
	}
}

func TestEmptyWhitelistMatchesNothing(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsWhitelisted("alice@example.com"))
}
