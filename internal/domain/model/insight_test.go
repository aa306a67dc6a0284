//go:build !integration

package model

import "testing"

const sampleBrief = `# Acme Corp Research Brief

## Overview
Acme Corp builds warehouse robotics for mid-market logistics companies.

## Key Facts
- **Industry:** Warehouse robotics
- **Headquarters**: Austin, TX
- **Employees:** 450
- **Funding:** $120M Series C
- **CEO:** Dana Novak

Visit https://acme.example for details.
`

func TestExtractInsights(t *testing.T) {
	got := ExtractInsights(sampleBrief, DefaultInsightOptions())
	want := []Insight{
		{"Industry", "Warehouse robotics"},
		{"Headquarters", "Austin, TX"},
		{"Employees", "450"},
		{"Funding", "$120M Series C"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d insights, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("insight %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractInsightsCap(t *testing.T) {
	got := ExtractInsights(sampleBrief, InsightOptions{MaxInsights: 2})
	if len(got) != 2 {
		t.Fatalf("cap not applied: got %d insights", len(got))
	}
}

func TestExtractInsightsTableRows(t *testing.T) {
	text := `
| Metric | Value |
|--------|-------|
| ARR | $14M |
| Churn | 3% |
`
	got := ExtractInsights(text, DefaultInsightOptions())
	want := []Insight{
		{"Metric", "Value"},
		{"ARR", "$14M"},
		{"Churn", "3%"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractInsightsSkipList(t *testing.T) {
	text := "Summary: boilerplate intro\nRevenue: $2M"
	got := ExtractInsights(text, DefaultInsightOptions())
	if len(got) != 1 || got[0].Label != "Revenue" {
		t.Fatalf("skip list not applied: %+v", got)
	}
}

func TestExtractInsightsEmptyInput(t *testing.T) {
	if got := ExtractInsights("", DefaultInsightOptions()); len(got) != 0 {
		t.Fatalf("expected no insights, got %+v", got)
	}
}
