package core

import "testing"

func TestAppendElementsLetters(t *testing.T) {
	testCases := []struct {
		char     byte
		expected []Element
	}{
		{'E', []Element{ElementDot, ElementLetterSpace}},
		{'T', []Element{ElementDash, ElementLetterSpace}},
		{'A', []Element{ElementDot, ElementDash, ElementLetterSpace}},
		{'Q', []Element{ElementDash, ElementDash, ElementDot, ElementDash, ElementLetterSpace}},
		{'5', []Element{ElementDot, ElementDot, ElementDot, ElementDot, ElementDot, ElementLetterSpace}},
		{'0', []Element{ElementDash, ElementDash, ElementDash, ElementDash, ElementDash, ElementLetterSpace}},
	}

	for _, tc := range testCases {
		got, ok := AppendElements(nil, tc.char)
		if !ok {
			t.Errorf("%q: not encodable", tc.char)
			continue
		}
		if len(got) != len(tc.expected) {
			t.Errorf("%q: got %v, want %v", tc.char, got, tc.expected)
			continue
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("%q: element %d = %v, want %v", tc.char, i, got[i], tc.expected[i])
			}
		}
	}
}

func TestAppendElementsLowercase(t *testing.T) {
	upper, _ := AppendElements(nil, 'K')
	lower, ok := AppendElements(nil, 'k')
	if !ok {
		t.Fatal("lowercase should encode")
	}
	if len(upper) != len(lower) {
		t.Fatalf("case mismatch: %v vs %v", upper, lower)
	}
	for i := range upper {
		if upper[i] != lower[i] {
			t.Errorf("element %d differs between cases", i)
		}
	}
}

func TestAppendElementsSpace(t *testing.T) {
	got, ok := AppendElements(nil, ' ')
	if !ok || len(got) != 1 || got[0] != ElementWordSpace {
		t.Errorf("space: got %v ok=%v, want a single word space", got, ok)
	}
}

func TestAppendElementsUnknown(t *testing.T) {
	for _, c := range []byte{'#', '@', 0x00, 0xFF, '\t'} {
		if got, ok := AppendElements(nil, c); ok {
			t.Errorf("%q: expected not encodable, got %v", c, got)
		}
	}
}

func TestAppendElementsAppends(t *testing.T) {
	dst := []Element{ElementWordSpace}
	got, ok := AppendElements(dst, 'E')
	if !ok {
		t.Fatal("E should encode")
	}
	if len(got) != 3 || got[0] != ElementWordSpace {
		t.Errorf("AppendElements should preserve existing contents, got %v", got)
	}
}
