package deposit

import (
	"strings"
	"sync"
)

// TokenPolicy decides which tokens may be deposited without prior
// per-account registration.
type TokenPolicy interface {
	IsWhitelisted(token string) bool
}

// StaticTokenPolicy is a set-backed TokenPolicy, typically seeded from the
// node configuration.
type StaticTokenPolicy struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewStaticTokenPolicy builds a policy whitelisting the supplied tokens.
func NewStaticTokenPolicy(tokens []string) *StaticTokenPolicy {
	policy := &StaticTokenPolicy{tokens: make(map[string]struct{}, len(tokens))}
	for _, token := range tokens {
		policy.Add(token)
	}
	return policy
}

// Add whitelists a token. Blank identifiers are ignored.
func (p *StaticTokenPolicy) Add(token string) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return
	}
	p.mu.Lock()
	p.tokens[trimmed] = struct{}{}
	p.mu.Unlock()
}

// IsWhitelisted implements the TokenPolicy interface.
func (p *StaticTokenPolicy) IsWhitelisted(token string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.tokens[strings.TrimSpace(token)]
	return ok
}
