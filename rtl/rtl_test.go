package rtl

import (
	"strings"
	"testing"
)

// 启动自检：与网页版一次性自检相同的断言，由测试框架执行一次。
func TestSelfCheck(t *testing.T) {
	if IsRTL("TOP") {
		t.Fatalf("TOP must be LTR")
	}
	if !IsRTL("שלום") {
		t.Fatalf("Hebrew must be RTL")
	}
	if !IsRTL("hey שלום") {
		t.Fatalf("mixed Latin+Hebrew must be RTL")
	}
	if IsRTL("123 abc") {
		t.Fatalf("digits and Latin must be LTR")
	}
	if IsRTL("ALL\u061C") {
		t.Fatalf("ALM alone must not flip direction")
	}
	if got := StripControls("ALL\u061C"); got != "ALL" {
		t.Fatalf("StripControls kept ALM: %q", got)
	}
}

func TestIsRTL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"\u200E\u200F\u202A\u202B\u202C\u202D\u202E\u2066\u2067\u2068\u2069\u061C", false},
		{"\u200Fabc", false},
		{"مرحبا", true},
		{"\u0750", true},  // Arabic Supplement
		{"\u08A0", true},  // Arabic Extended-A
		{"\u0710\u0712", false}, // Syriac stays LTR
		{"\u0780\u0781", false}, // Thaana stays LTR
		{"\u2067שלום\u2069", true},
		{"BOTTOM TEXT 42", false},
	}
	for _, tc := range cases {
		if got := IsRTL(tc.in); got != tc.want {
			t.Fatalf("IsRTL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUppercaseKeepsClassification(t *testing.T) {
	for _, s := range []string{"שלום עולם", "hello", "abc مرحبا", "i\u0307stanbul"} {
		if IsRTL(s) != IsRTL(strings.ToUpper(s)) {
			t.Fatalf("uppercasing changed classification of %q", s)
		}
	}
}

func TestStripControlsKeepsVisibleText(t *testing.T) {
	in := "\u202Bאבג\u202C def"
	if got := StripControls(in); got != "אבג def" {
		t.Fatalf("unexpected stripped text %q", got)
	}
	if got := StripControls("\u2066a\u2069\u200F"); got != "a" {
		t.Fatalf("isolates and marks should be removed, got %q", got)
	}
}
