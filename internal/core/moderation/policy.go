// Package moderation decides whether user supplied text may be stored.
package moderation

import "strings"

// Policy judges free text before it becomes part of an aggregate
type Policy interface {
	IsAppropriate(text string) bool
}

// PolicyFunc adapts a plain function to Policy
type PolicyFunc func(text string) bool

func (f PolicyFunc) IsAppropriate(text string) bool {
	return f(text)
}

// DenylistPolicy rejects text containing any listed term, ignoring case
type DenylistPolicy struct {
	terms []string
}

// NewDenylistPolicy creates a policy from terms. Blank terms are dropped.
func NewDenylistPolicy(terms ...string) *DenylistPolicy {
	p := &DenylistPolicy{terms: make([]string, 0, len(terms))}
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			p.terms = append(p.terms, term)
		}
	}
	return p
}

func (p *DenylistPolicy) IsAppropriate(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range p.terms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// Terms returns a copy of the configured terms
func (p *DenylistPolicy) Terms() []string {
	out := make([]string, len(p.terms))
	copy(out, p.terms)
	return out
}

// Default term lists applied when no override is configured
var (
	DefaultContentTerms = []string{"spam", "scam", "hate"}
	DefaultBioTerms     = []string{"spam", "scam"}
)

// DefaultContentPolicy is used for publication text when none is injected
func DefaultContentPolicy() Policy {
	return NewDenylistPolicy(DefaultContentTerms...)
}

// DefaultBioPolicy is used for profile bios when none is injected
func DefaultBioPolicy() Policy {
	return NewDenylistPolicy(DefaultBioTerms...)
}

// AllowAll accepts every text
var AllowAll Policy = PolicyFunc(func(string) bool { return true })
