package rate

import (
	"strings"
	"time"
)

// Tier is a coarse classification of routes sharing one admission policy.
type Tier string

const (
	// TierTrading covers order submission and cancellation.
	TierTrading Tier = "trading"
	// TierSiphon covers sensitive fund-movement mutations.
	TierSiphon Tier = "siphon"
	// TierVault covers vault balance operations.
	TierVault Tier = "vault"
	// TierPortfolio covers portfolio and market-data reads.
	TierPortfolio Tier = "portfolio"
	// TierAuth covers credential issuance and refresh.
	TierAuth Tier = "auth"
	// TierGeneral is the fallback for unclassified paths.
	TierGeneral Tier = "general"
)

// Valid reports whether the tier belongs to the closed tier set.
func (t Tier) Valid() bool {
	switch t {
	case TierTrading, TierSiphon, TierVault, TierPortfolio, TierAuth, TierGeneral:
		return true
	}
	return false
}

// TierConfig is the admission policy of one tier.
type TierConfig struct {
	// Window is the fixed counting window.
	Window time.Duration
	// MaxRequests is the number of admissions per key per window.
	MaxRequests int
	// Message is returned to denied callers.
	Message string
}

// DefaultLimits returns the standard per-tier policy table.
func DefaultLimits() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		TierTrading: {
			Window:      time.Minute,
			MaxRequests: 10,
			Message:     "trade limit reached, slow down",
		},
		TierSiphon: {
			Window:      time.Hour,
			MaxRequests: 5,
			Message:     "siphon operations are limited, try again later",
		},
		TierVault: {
			Window:      time.Minute,
			MaxRequests: 20,
			Message:     "vault access limit reached",
		},
		TierPortfolio: {
			Window:      time.Minute,
			MaxRequests: 100,
			Message:     "portfolio request limit reached",
		},
		TierAuth: {
			Window:      15 * time.Minute,
			MaxRequests: 5,
			Message:     "too many authentication attempts",
		},
		TierGeneral: {
			Window:      time.Minute,
			MaxRequests: 100,
			Message:     "request limit reached",
		},
	}
}

// Longest prefix wins is unnecessary here; prefixes are disjoint.
var tierPrefixes = []struct {
	prefix string
	tier   Tier
}{
	{"/api/auth", TierAuth},
	{"/api/trading", TierTrading},
	{"/api/siphon", TierSiphon},
	{"/api/vault", TierVault},
	{"/api/portfolio", TierPortfolio},
}

// Classify maps a request path to its tier. Unclassified paths fall back to
// [TierGeneral].
func Classify(path string) Tier {
	for _, p := range tierPrefixes {
		if strings.HasPrefix(path, p.prefix) {
			return p.tier
		}
	}
	return TierGeneral
}
