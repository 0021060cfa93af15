package instance

import "testing"

func TestGetID(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("K_REVISION", "")
	t.Setenv("INSTANCE_ID", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local fallback, got %q", got)
	}

	t.Setenv("INSTANCE_ID", "api-2")
	if got := GetID(); got != "api-2" {
		t.Fatalf("expected INSTANCE_ID, got %q", got)
	}

	t.Setenv("DYNO", "web.1")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected DYNO to win, got %q", got)
	}
}
