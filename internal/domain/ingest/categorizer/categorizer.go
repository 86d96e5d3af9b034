// Package categorizer assigns a category label to a free-text transaction
// description via ordered keyword matching.
package categorizer

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Rule pairs a category label with the keywords that select it. Rule order
// is a first-match-wins priority list: when keywords from several rules
// match, the earliest-declared rule wins.
type Rule struct {
	Label    string
	Keywords []string
}

// DefaultRules returns the stock keyword table. The Food rule carries
// coffee-shop descriptors so chains like "STARBUCKS COFFEE #4521" land in
// Food rather than the catch-all. Every expense-facing label here must be a
// member of the expense category set, or its hits clamp to the catch-all.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "Salary", Keywords: []string{"salary", "payroll", "wage"}},
		{Label: "Food", Keywords: []string{"food", "restaurant", "grocery", "supermarket", "cafe", "coffee", "starbucks", "dining"}},
		{Label: "Transport", Keywords: []string{"uber", "fuel", "bus", "train", "taxi"}},
		{Label: "Utilities", Keywords: []string{"electricity", "water", "internet", "phone"}},
		{Label: "Health", Keywords: []string{"pharmacy", "medical", "hospital"}},
		{Label: "Entertainment", Keywords: []string{"netflix", "spotify", "movie", "cinema"}},
		{Label: "Clothing", Keywords: []string{"amazon", "shopping", "clothing", "electronics"}},
		{Label: "Cash Withdraw", Keywords: []string{"atm", "withdrawal", "cash"}},
		{Label: "Loans", Keywords: []string{"loan", "mortgage", "emi", "interest"}},
	}
}

// Engine matches descriptions against all rule keywords in a single pass
// using the Aho-Corasick algorithm, then resolves ties by rule order.
type Engine struct {
	mu       sync.RWMutex
	matcher  *ahocorasick.Matcher
	ruleIdx  []int // pattern index -> owning rule index (earliest wins on duplicates)
	rules    []Rule
	catchAll string
}

// NewEngine compiles the rule list. catchAll is returned when nothing
// matches.
func NewEngine(rules []Rule, catchAll string) *Engine {
	e := &Engine{catchAll: catchAll}
	e.Build(rules)
	return e
}

// Build recompiles the matcher from a new rule list.
func (e *Engine) Build(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]int)
	var patterns [][]byte
	var ruleIdx []int

	for i, rule := range rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				// Keyword already owned by an earlier rule; first declared wins.
				continue
			}
			seen[kw] = i
			patterns = append(patterns, []byte(kw))
			ruleIdx = append(ruleIdx, i)
		}
	}

	e.rules = rules
	e.ruleIdx = ruleIdx
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewMatcher(patterns)
	} else {
		e.matcher = nil
	}
}

// Categorize lower-cases the description and returns the label of the
// earliest-declared rule with any keyword hit, or the catch-all label.
func (e *Engine) Categorize(description string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return e.catchAll
	}

	matches := e.matcher.Match([]byte(strings.ToLower(description)))
	best := -1
	for _, p := range matches {
		if p < 0 || p >= len(e.ruleIdx) {
			continue
		}
		if idx := e.ruleIdx[p]; best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return e.catchAll
	}
	return e.rules[best].Label
}

// CatchAll returns the fallback label.
func (e *Engine) CatchAll() string { return e.catchAll }
