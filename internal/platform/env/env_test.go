package env

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("ANOMALAB_TEST_STRING", "override")
	if got := String("ANOMALAB_TEST_STRING", "def"); got != "override" {
		t.Fatalf("String() = %q, want %q", got, "override")
	}
	if got := String("ANOMALAB_TEST_STRING_MISSING", "def"); got != "def" {
		t.Fatalf("String() = %q, want default", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ANOMALAB_TEST_DURATION", "90s")
	got, err := Duration("ANOMALAB_TEST_DURATION", time.Second)
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}
	if got != 90*time.Second {
		t.Fatalf("Duration() = %v, want 90s", got)
	}

	t.Setenv("ANOMALAB_TEST_DURATION", "ninety")
	if _, err := Duration("ANOMALAB_TEST_DURATION", time.Second); err == nil {
		t.Fatal("Duration() error = nil for malformed value")
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ANOMALAB_TEST_BOOL", "true")
	got, err := Bool("ANOMALAB_TEST_BOOL", false)
	if err != nil {
		t.Fatalf("Bool() error = %v", err)
	}
	if !got {
		t.Fatal("Bool() = false, want true")
	}
}

func TestInt(t *testing.T) {
	t.Setenv("ANOMALAB_TEST_INT", "7")
	got, err := Int("ANOMALAB_TEST_INT", 1)
	if err != nil {
		t.Fatalf("Int() error = %v", err)
	}
	if got != 7 {
		t.Fatalf("Int() = %d, want 7", got)
	}

	t.Setenv("ANOMALAB_TEST_INT", "seven")
	if _, err := Int("ANOMALAB_TEST_INT", 1); err == nil {
		t.Fatal("Int() error = nil for malformed value")
	}
}
