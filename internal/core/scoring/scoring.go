// Package scoring implements the lead opportunity scoring engine.
//
// A lead's score is the weighted sum of independent predicate rules
// evaluated against a snapshot of the lead's business facts, clamped to
// [0,100]. Higher scores mean a better outreach opportunity (weak web
// presence, few reviews, reachable by phone)
package scoring

import (
	"sync"
)

// Record is the snapshot of business facts the rules evaluate.
// Pointer fields are nil when the provider did not report the fact,
// rules must treat unknown as unmatched rather than guessing
type Record struct {
	Website        *string
	Phone          *string
	Rating         *float64
	ReviewCount    *int
	PhotoCount     *int
	PriceLevel     *int
	BusinessStatus string
}

// Rule is a single weighted predicate
type Rule struct {
	Name      string
	Weight    int
	Desc      string
	Predicate func(Record) (bool, error)
}

// RuleResult is one rule's outcome for Explain
type RuleResult struct {
	Name      string
	Matched   bool
	Points    int
	MaxPoints int
	Err       error
}

// Engine evaluates an ordered rule list.
// Safe for concurrent Score/Explain, rule mutation takes the write lock
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
}

const maxScore = 100

// New returns an engine with the given rules, in order
func New(rules ...Rule) *Engine {
	e := &Engine{}
	e.rules = append(e.rules, rules...)
	return e
}

// Default returns an engine loaded with the stock rule set
func Default() *Engine { return New(DefaultRules()...) }

// DefaultRules returns the stock rule list.
// Weights sum past 100 on purpose, the clamp rewards stacking signals
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "no_website",
			Weight: 30,
			Desc:   "no website listed",
			Predicate: func(r Record) (bool, error) {
				return r.Website == nil || *r.Website == "", nil
			},
		},
		{
			Name:   "few_reviews",
			Weight: 20,
			Desc:   "fewer than 10 reviews",
			Predicate: func(r Record) (bool, error) {
				return r.ReviewCount != nil && *r.ReviewCount < 10, nil
			},
		},
		{
			Name:   "low_rating",
			Weight: 15,
			Desc:   "rating below 4.0",
			Predicate: func(r Record) (bool, error) {
				return r.Rating != nil && *r.Rating > 0 && *r.Rating < 4.0, nil
			},
		},
		{
			Name:   "few_photos",
			Weight: 15,
			Desc:   "fewer than 5 photos",
			Predicate: func(r Record) (bool, error) {
				return r.PhotoCount != nil && *r.PhotoCount < 5, nil
			},
		},
		{
			Name:   "premium_price",
			Weight: 10,
			Desc:   "price level 3 or higher",
			Predicate: func(r Record) (bool, error) {
				return r.PriceLevel != nil && *r.PriceLevel >= 3, nil
			},
		},
		{
			Name:   "has_phone",
			Weight: 5,
			Desc:   "phone number listed",
			Predicate: func(r Record) (bool, error) {
				return r.Phone != nil && *r.Phone != "", nil
			},
		},
		{
			Name:   "operational",
			Weight: 5,
			Desc:   "business reported operational",
			Predicate: func(r Record) (bool, error) {
				return r.BusinessStatus == "" || r.BusinessStatus == "OPERATIONAL", nil
			},
		},
	}
}

// Score evaluates all rules and returns the clamped weighted sum.
// A predicate error counts as unmatched, use Explain to see which
func (e *Engine) Score(rec Record) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := 0
	for _, r := range e.rules {
		if r.Predicate == nil {
			continue
		}
		ok, err := r.Predicate(rec)
		if err != nil || !ok {
			continue
		}
		total += r.Weight
	}
	if total > maxScore {
		total = maxScore
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Explain evaluates all rules and reports per-rule outcomes in rule order
func (e *Engine) Explain(rec Record) []RuleResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]RuleResult, 0, len(e.rules))
	for _, r := range e.rules {
		res := RuleResult{Name: r.Name, MaxPoints: r.Weight}
		if r.Predicate != nil {
			ok, err := r.Predicate(rec)
			res.Err = err
			if err == nil && ok {
				res.Matched = true
				res.Points = r.Weight
			}
		}
		out = append(out, res)
	}
	return out
}

// MaxScore returns the clamp ceiling
func (e *Engine) MaxScore() int { return maxScore }

// Add appends a rule, replacing any existing rule with the same name in place
func (e *Engine) Add(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.rules {
		if e.rules[i].Name == r.Name {
			e.rules[i] = r
			return
		}
	}
	e.rules = append(e.rules, r)
}

// Remove deletes the rule with the given name, reports whether it existed
func (e *Engine) Remove(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.rules {
		if e.rules[i].Name == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns a copy of the current rule list
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
