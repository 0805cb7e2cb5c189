package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if sender domains are whitelisted
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase)
	normalizedDomains := make([]string, len(domains))
	for i, domain := range domains {
		normalizedDomains[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsWhitelisted checks if the sender's domain is in the whitelist
func (c *Checker) IsWhitelisted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	if domain == "" {
		return false
	}

	for _, whitelisted := range c.domains {
		if whitelisted == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is whitelisted",
					zap.String("domain", domain),
					zap.String("sender", from))
			}
			return true
		}
	}

	return false
}

var headerUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&amp;", "&",
)

// senderDomain extracts the address domain from a From value, which may be
// a bare address or a display name form like `Alice <alice@example.com>`.
func senderDomain(from string) string {
	from = headerUnescaper.Replace(from)
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(from[at+1:], "<> "))
}
