package tui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommonPrefixLen(t *testing.T) {
	tests := []struct {
		description string
		a, b        string
		expected    int
	}{
		{description: "identical", a: "hello", b: "hello", expected: 5},
		{description: "one char appended", a: "hell", b: "hello", expected: 4},
		{description: "no overlap", a: "abc", b: "xyz", expected: 0},
		{description: "empty a", a: "", b: "abc", expected: 0},
		{description: "multibyte rune counted as one", a: "héllo", b: "héllo!", expected: 5},
	}

	for _, tc := range tests {
		got := commonPrefixLen([]rune(tc.a), []rune(tc.b))
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestCommonSuffixLen(t *testing.T) {
	tests := []struct {
		description string
		a, b        string
		expected    int
	}{
		{description: "identical", a: "hello", b: "hello", expected: 5},
		{description: "one char prepended", a: "ello", b: "hello", expected: 4},
		{description: "no overlap", a: "abc", b: "xyz", expected: 0},
		{description: "multibyte rune counted as one", a: "héllo", b: "!héllo", expected: 5},
	}

	for _, tc := range tests {
		got := commonSuffixLen([]rune(tc.a), []rune(tc.b))
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestMinInt(t *testing.T) {
	tests := []struct {
		a, b, expected int
	}{
		{a: 1, b: 2, expected: 1},
		{a: 5, b: 5, expected: 5},
		{a: 9, b: 0, expected: 0},
	}

	for _, tc := range tests {
		if got := minInt(tc.a, tc.b); got != tc.expected {
			t.Errorf("minInt(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}
