package jsonapi

import (
	"reflect"
	"testing"
)

func TestCompileMergesSharedPrefixes(t *testing.T) {
	cases := []struct {
		in       string
		expected IncludeTree
	}{
		{"", IncludeTree{}},
		{"supplier", IncludeTree{"supplier": IncludeTree{}}},
		{"a.b,a.c,a", IncludeTree{"a": IncludeTree{"b": IncludeTree{}, "c": IncludeTree{}}}},
		{"quote.supplier,attachment", IncludeTree{
			"quote":      IncludeTree{"supplier": IncludeTree{}},
			"attachment": IncludeTree{},
		}},
		{"a,a.b,a.b", IncludeTree{"a": IncludeTree{"b": IncludeTree{}}}},
		{" a.b , a.c ", IncludeTree{"a": IncludeTree{"b": IncludeTree{}, "c": IncludeTree{}}}},
	}
	for _, tc := range cases {
		got := Compile(tc.in)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Fatalf("Compile(%q) expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}

func TestCompileNeverOverwritesSubtrees(t *testing.T) {
	// "a" after "a.b" must not flatten the existing subtree
	got := Compile("a.b,a")
	if !reflect.DeepEqual(got, IncludeTree{"a": IncludeTree{"b": IncludeTree{}}}) {
		t.Fatalf("subtree was overwritten: %v", got)
	}
}

func TestPreloadsSkipUndeclaredJoins(t *testing.T) {
	registry := testRegistry()

	tree := Compile("quote.supplier,nonsense,quote.bogus")
	got := tree.Preloads("invoice", registry)
	expected := []string{"Quote", "Quote.Supplier"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected preloads %v, got %v", expected, got)
	}
}

func TestPreloadsEmptyTree(t *testing.T) {
	if got := Compile("").Preloads("invoice", testRegistry()); len(got) != 0 {
		t.Fatalf("expected no preloads, got %v", got)
	}
}
