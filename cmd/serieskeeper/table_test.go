package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Name", "Book"}, [][]string{{"Aria", "3"}, {"Bren"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "Aria") || !strings.Contains(out, "Bren") || !strings.Contains(out, "Book") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if got := renderTable(nil, [][]string{{"x"}}, nil); got != "" {
		t.Fatalf("expected empty output without headers, got %q", got)
	}
}

func TestBookCell(t *testing.T) {
	n := 4
	if bookCell(&n) != "4" || bookCell(nil) != "-" {
		t.Fatalf("unexpected book cells: %q %q", bookCell(&n), bookCell(nil))
	}
}

func TestParseParamPairs(t *testing.T) {
	params, err := parseParamPairs([]string{"1=Ember", " 2 = alive ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["1"] != "Ember" || params["2"] != "alive" || len(params) != 2 {
		t.Fatalf("unexpected params: %v", params)
	}
	if _, err := parseParamPairs([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	if _, err := parseParamPairs([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
