package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"gemini_api_key", "AIzaSyExample",
		"CLERK_SECRET_KEY", "sk_live_abc",
		"title", "Meal planner",
	})
	if len(out) != 6 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("expected secrets to be redacted, got %v", out)
	}
	if out[5] != "Meal planner" {
		t.Fatalf("expected plain value to pass through, got %v", out[5])
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "user_2abcDEF"})
	got, _ := out[1].(string)
	if !strings.HasPrefix(got, "hash:") {
		t.Fatalf("expected hashed user id, got %q", got)
	}
	if strings.Contains(got, "user_2abcDEF") {
		t.Fatalf("hash leaked raw value: %q", got)
	}
}

func TestSanitizeKVsRedactsBareJWTs(t *testing.T) {
	jwt := "eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiJ1c2VyXzEyMyJ9.signature"
	out := sanitizeKVs([]interface{}{"header", jwt})
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected jwt-looking value to be redacted, got %v", out[1])
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("service", "X").Info("discarded", "k", "v")
	l.Sync()
}
