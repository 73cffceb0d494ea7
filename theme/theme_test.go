package theme

import "testing"

func TestToggle(t *testing.T) {
	defer Set(DefaultDark.Name)

	tests := []struct {
		from, want string
	}{
		{"default-dark", "default-light"},
		{"solarized-light", "solarized-dark"},
		{"nord", "default-dark"}, // no variant: cycles, wrapping around
	}
	for _, tt := range tests {
		if !Set(tt.from) {
			t.Fatalf("Set(%q) = false", tt.from)
		}
		Toggle()
		if Current.Name != tt.want {
			t.Fatalf("Toggle() from %q = %q, want %q", tt.from, Current.Name, tt.want)
		}
	}
}

func TestSetUnknown(t *testing.T) {
	defer Set(DefaultDark.Name)
	Set("nord")
	if Set("no-such-theme") {
		t.Fatal("Set of unknown theme should fail")
	}
	if Current != Nord {
		t.Fatalf("Current changed to %q", Current.Name)
	}
}

func TestGlamourStyle(t *testing.T) {
	if DefaultDark.GlamourStyle() != "dark" || DefaultLight.GlamourStyle() != "light" {
		t.Fatal("glamour style should follow Dark")
	}
}
