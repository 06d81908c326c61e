package shortcode

import (
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	for _, length := range []int{1, 7, 20} {
		code := Generate(length)
		if len(code) != length {
			t.Errorf("Generate(%d) returned %q with length %d", length, code, len(code))
		}
	}
}

func TestGenerateAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := Generate(DefaultLength)
		for _, ch := range code {
			if !strings.ContainsRune(alphabet, ch) {
				t.Fatalf("Generate produced %q containing %q outside the alphabet", code, ch)
			}
		}
	}
}

func TestGenerateVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[Generate(DefaultLength)] = true
	}
	// 50 draws from a 57^7 space colliding down to a handful would mean a
	// broken source
	if len(seen) < 45 {
		t.Errorf("Expected ~50 distinct codes, got %d", len(seen))
	}
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		alias string
		want  bool
	}{
		{"abc", true},               // minimum length
		{"ab-c", true},              // interior hyphen
		{"ab_c", true},              // interior underscore
		{"my-custom-alias", true},
		{"ABC123", true},
		{"a2345678901234567890", true},  // exactly 20
		{"ab", false},                   // too short
		{"a23456789012345678901", false}, // 21 chars
		{"", false},
		{"-abc", false}, // leading separator
		{"abc-", false}, // trailing separator
		{"_abc", false},
		{"abc_", false},
		{"ab c", false}, // space
		{"ab.c", false}, // dot
		{"ab/c", false},
	}

	for _, tt := range tests {
		if got := ValidateAlias(tt.alias); got != tt.want {
			t.Errorf("ValidateAlias(%q) = %v, want %v", tt.alias, got, tt.want)
		}
	}
}
