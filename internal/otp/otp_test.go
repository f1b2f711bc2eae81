package otp

import (
	"strconv"
	"testing"
)

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non numeric code %q", code)
		}
		if n < minCode || n > maxCode {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestFixed(t *testing.T) {
	code, err := Fixed("123456")()
	if err != nil || code != "123456" {
		t.Fatalf("expected fixed code, got %q (%v)", code, err)
	}
}
