package kb

import "testing"

func TestNormalizeMotifName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Accident", "accident"},
		{"ChristmasSymbol", "christmas symbol"},
		{"dangerousanimal", "dangerous animal"},
		{"DANGEROUSENVIRONMENT", "dangerous environment"},
		{"eastersymbol", "easter symbol"},
		{"FormalDress", "formal dress"},
		{"guyfawkes", "guy fawkes"},
		{"religioussymbol", "religious symbol"},
		{"SoundSystem", "sound system"},
		{"thanksgivingsymbol", "thanksgiving symbol"},
		{"warmclothing", "warm clothing"},
		{"Weapon", "weapon"},
		{"fireworksnight", "fireworksnight"}, // theme table only
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeMotifName(tt.raw); got != tt.want {
			t.Errorf("NormalizeMotifName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeThemeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"FireworksNight", "fireworks night"},
		{"Danger", "danger"},
		{"warmclothing", "warmclothing"}, // motif table only
	}

	for _, tt := range tests {
		if got := NormalizeThemeName(tt.raw); got != tt.want {
			t.Errorf("NormalizeThemeName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"WarmClothing", "guy fawkes", "Danger", "FireworksNight"} {
		once := NormalizeMotifName(raw)
		if twice := NormalizeMotifName(once); twice != once {
			t.Errorf("motif %q: %q then %q", raw, once, twice)
		}
		once = NormalizeThemeName(raw)
		if twice := NormalizeThemeName(once); twice != once {
			t.Errorf("theme %q: %q then %q", raw, once, twice)
		}
	}
}
