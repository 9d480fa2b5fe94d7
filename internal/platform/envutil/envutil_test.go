package envutil

import (
	"testing"
	"time"
)

func TestTypedLookups(t *testing.T) {
	t.Setenv("IV_TEST_INT", "42")
	t.Setenv("IV_TEST_BAD_INT", "forty")
	t.Setenv("IV_TEST_BOOL", "yes")
	t.Setenv("IV_TEST_DUR", "90s")
	t.Setenv("IV_TEST_DUR_SECS", "30")
	t.Setenv("IV_TEST_CSV", " a, b ,,c ")

	if got := Int("IV_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("IV_TEST_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if !Bool("IV_TEST_BOOL", false, nil) {
		t.Fatalf("Bool: expected true")
	}
	if got := Duration("IV_TEST_DUR", time.Second, nil); got != 90*time.Second {
		t.Fatalf("Duration: got %s", got)
	}
	if got := Duration("IV_TEST_DUR_SECS", time.Second, nil); got != 30*time.Second {
		t.Fatalf("Duration secs: got %s", got)
	}
	csv := CSV("IV_TEST_CSV", nil, nil)
	if len(csv) != 3 || csv[0] != "a" || csv[1] != "b" || csv[2] != "c" {
		t.Fatalf("CSV: got %v", csv)
	}
	if got := String("IV_TEST_UNSET", "def", nil); got != "def" {
		t.Fatalf("String default: got %q", got)
	}
}
