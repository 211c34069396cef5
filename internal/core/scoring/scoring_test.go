package scoring

import (
	"errors"
	"testing"
)

func strp(s string) *string   { return &s }
func intp(n int) *int         { return &n }
func f64p(f float64) *float64 { return &f }

func TestScore_StrongOpportunityScenario(t *testing.T) {
	t.Parallel()

	// no website, 4 reviews, rating 3.2, phone listed, operational
	rec := Record{
		Phone:          strp("+1 555 0100"),
		Rating:         f64p(3.2),
		ReviewCount:    intp(4),
		BusinessStatus: "OPERATIONAL",
	}

	got := Default().Score(rec)
	if got < 65 {
		t.Fatalf("Score = %d, want >= 65", got)
	}
}

func TestScore_ClampedToMax(t *testing.T) {
	t.Parallel()

	e := Default()
	// stack an extra rule so the raw sum exceeds the ceiling
	e.Add(Rule{
		Name:      "always",
		Weight:    50,
		Predicate: func(Record) (bool, error) { return true, nil },
	})

	rec := Record{
		Phone:          strp("+1 555 0100"),
		Rating:         f64p(2.0),
		ReviewCount:    intp(1),
		PhotoCount:     intp(0),
		PriceLevel:     intp(4),
		BusinessStatus: "OPERATIONAL",
	}

	if got := e.Score(rec); got != e.MaxScore() {
		t.Fatalf("Score = %d, want clamped to %d", got, e.MaxScore())
	}
}

func TestScore_RangeAndPurity(t *testing.T) {
	t.Parallel()

	e := Default()
	records := []Record{
		{},
		{Website: strp("https://example.com")},
		{Website: strp("https://example.com"), Rating: f64p(4.9), ReviewCount: intp(2500), PhotoCount: intp(40)},
		{Phone: strp("x"), Rating: f64p(1.0), ReviewCount: intp(0), PhotoCount: intp(0), PriceLevel: intp(4)},
	}

	for i, rec := range records {
		first := e.Score(rec)
		if first < 0 || first > e.MaxScore() {
			t.Fatalf("record %d: Score = %d out of range", i, first)
		}
		// pure: same input, same output, input untouched
		if again := e.Score(rec); again != first {
			t.Fatalf("record %d: Score not stable, %d then %d", i, first, again)
		}
	}
}

func TestScore_UnknownFactsDoNotMatch(t *testing.T) {
	t.Parallel()

	// all pointer facts unknown: only no_website and operational can fire
	got := Default().Score(Record{})
	want := 30 + 5
	if got != want {
		t.Fatalf("Score = %d, want %d", got, want)
	}
}

func TestScore_PredicateErrorCountsAsUnmatched(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := New(
		Rule{Name: "bad", Weight: 40, Predicate: func(Record) (bool, error) { return true, boom }},
		Rule{Name: "good", Weight: 10, Predicate: func(Record) (bool, error) { return true, nil }},
	)

	if got := e.Score(Record{}); got != 10 {
		t.Fatalf("Score = %d, want 10 (error rule skipped)", got)
	}

	ex := e.Explain(Record{})
	if len(ex) != 2 {
		t.Fatalf("Explain returned %d results, want 2", len(ex))
	}
	if !errors.Is(ex[0].Err, boom) {
		t.Fatalf("Explain should surface the predicate error, got %v", ex[0].Err)
	}
	if ex[0].Matched || ex[0].Points != 0 {
		t.Fatalf("errored rule must not score: %+v", ex[0])
	}
	if !ex[1].Matched || ex[1].Points != 10 {
		t.Fatalf("healthy rule should score: %+v", ex[1])
	}
}

func TestExplain_ReportsRuleOrderAndWeights(t *testing.T) {
	t.Parallel()

	e := Default()
	rec := Record{Website: strp("https://example.com"), Phone: strp("+1")}

	ex := e.Explain(rec)
	if len(ex) != len(DefaultRules()) {
		t.Fatalf("Explain returned %d results, want %d", len(ex), len(DefaultRules()))
	}
	for i, r := range DefaultRules() {
		if ex[i].Name != r.Name {
			t.Fatalf("result %d: name %q, want %q (order must match rules)", i, ex[i].Name, r.Name)
		}
		if ex[i].MaxPoints != r.Weight {
			t.Fatalf("result %d: max points %d, want %d", i, ex[i].MaxPoints, r.Weight)
		}
	}

	byName := map[string]RuleResult{}
	for _, rr := range ex {
		byName[rr.Name] = rr
	}
	if byName["no_website"].Matched {
		t.Fatalf("no_website should not match when a website is set")
	}
	if !byName["has_phone"].Matched {
		t.Fatalf("has_phone should match")
	}
}

func TestAddRemove_Rules(t *testing.T) {
	t.Parallel()

	e := Default()
	base := e.Score(Record{})

	e.Add(Rule{
		Name:      "bonus",
		Weight:    7,
		Predicate: func(Record) (bool, error) { return true, nil },
	})
	if got := e.Score(Record{}); got != base+7 {
		t.Fatalf("after Add: Score = %d, want %d", got, base+7)
	}

	// Add with an existing name replaces in place
	e.Add(Rule{
		Name:      "bonus",
		Weight:    9,
		Predicate: func(Record) (bool, error) { return true, nil },
	})
	if got := e.Score(Record{}); got != base+9 {
		t.Fatalf("after replace: Score = %d, want %d", got, base+9)
	}

	if !e.Remove("bonus") {
		t.Fatalf("Remove should report the rule existed")
	}
	if e.Remove("bonus") {
		t.Fatalf("second Remove should report missing")
	}
	if got := e.Score(Record{}); got != base {
		t.Fatalf("after Remove: Score = %d, want %d", got, base)
	}
}
