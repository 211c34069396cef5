package domain

import (
	"testing"
	"time"

	perr "leadscout/internal/platform/errors"
)

func TestParamsValidateUnionDiscipline(t *testing.T) {
	ok := Params{Kind: KindText, Text: &TextParams{Query: "cafes in braga"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := map[string]Params{
		"no variant":       {Kind: KindText},
		"two variants":     {Kind: KindText, Text: &TextParams{Query: "x"}, Tags: &TagsParams{Area: "porto"}},
		"kind mismatch":    {Kind: KindNearby, Text: &TextParams{Query: "x"}},
		"unknown kind":     {Kind: QueryKind("fuzzy"), Text: &TextParams{Query: "x"}},
		"empty text query": {Kind: KindText, Text: &TextParams{}},
		"empty tags area":  {Kind: KindTags, Tags: &TagsParams{}},
	}
	for name, p := range cases {
		if err := p.Validate(); perr.Code(err) != perr.CodeValidation {
			t.Errorf("%s: code = %v, want validation", name, perr.Code(err))
		}
	}
}

func TestParamsEncodeDecodeRoundTrip(t *testing.T) {
	lat := 38.72
	p := Params{
		Kind: KindText,
		Text: &TextParams{Query: "restaurants in lisboa", Lat: &lat, RadiusM: 2500, MaxResults: 40},
	}

	raw, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeParams(raw)
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if got.Kind != KindText || got.Text == nil {
		t.Fatalf("round trip lost the variant: %+v", got)
	}
	if got.Text.Query != p.Text.Query || got.Text.RadiusM != 2500 || *got.Text.Lat != lat {
		t.Fatalf("round trip mutated fields: %+v", got.Text)
	}
	if got.Nearby != nil || got.Tags != nil {
		t.Fatal("round trip grew extra variants")
	}
}

func TestDecodeParamsRejectsGarbage(t *testing.T) {
	if _, err := DecodeParams([]byte(`{"kind":`)); perr.Code(err) != perr.CodeSyntax {
		t.Fatalf("code = %v, want syntax", perr.Code(err))
	}
	if _, err := DecodeParams([]byte(`{"kind":"text"}`)); perr.Code(err) != perr.CodeValidation {
		t.Fatalf("code = %v, want validation", perr.Code(err))
	}
}

func TestDefinitionDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		d    Definition
		want bool
	}{
		{"inactive never due", Definition{IsActive: false}, false},
		{"never scheduled", Definition{IsActive: true}, true},
		{"marker in the past", Definition{IsActive: true, NextRunAt: &past}, true},
		{"marker exactly now", Definition{IsActive: true, NextRunAt: &now}, true},
		{"marker in the future", Definition{IsActive: true, NextRunAt: &future}, false},
	}
	for _, tc := range cases {
		if got := tc.d.Due(now); got != tc.want {
			t.Errorf("%s: Due = %v, want %v", tc.name, got, tc.want)
		}
	}
}
