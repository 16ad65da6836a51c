package resolve

import (
	"reflect"
	"testing"
)

func TestBuildSetDeduplicates(t *testing.T) {
	raw := []Dependency{
		{Kind: DepColumn, Schema: "dbo", Name: "Account", Column: "Id"},
		{Kind: DepColumn, Schema: "DBO", Name: "ACCOUNT", Column: "ID"},
		{Kind: DepColumn, Schema: "dbo", Name: "Account", Column: "Id"},
	}

	out := BuildSet(raw)
	if len(out) != 1 {
		t.Fatalf("expected 1 dependency, got %d: %v", len(out), out)
	}
	// first occurrence's casing survives
	if out[0].Schema != "dbo" || out[0].Column != "Id" {
		t.Errorf("unexpected survivor: %+v", out[0])
	}
}

func TestBuildSetOrder(t *testing.T) {
	raw := []Dependency{
		{Kind: DepColumn, Schema: "dbo", Name: "Users", Column: "Name"},
		{Kind: DepColumn, Schema: "dbo", Name: "Account", Column: "Id"},
		{Kind: DepObject, Schema: "dbo", Name: "fn_Total"},
		{Kind: DepColumn, Schema: "audit", Name: "Log", Column: "At"},
		{Kind: DepColumn, Schema: "dbo", Name: "Account", Column: "Email"},
	}

	out := BuildSet(raw)
	want := []string{
		"[dbo].[fn_Total]",
		"[audit].[Log].[At]",
		"[dbo].[Account].[Email]",
		"[dbo].[Account].[Id]",
		"[dbo].[Users].[Name]",
	}
	got := depStrings(out)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order mismatch:\n  got  %v\n  want %v", got, want)
	}
}

func TestBuildSetDeterministic(t *testing.T) {
	raw := []Dependency{
		{Kind: DepColumn, Schema: "dbo", Name: "B", Column: "y"},
		{Kind: DepColumn, Schema: "dbo", Name: "A", Column: "x"},
		{Kind: DepObject, Schema: "dbo", Name: "P"},
	}

	first := BuildSet(raw)
	second := BuildSet([]Dependency{raw[2], raw[0], raw[1]})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("input order leaked into output:\n  %v\n  %v", first, second)
	}
}
