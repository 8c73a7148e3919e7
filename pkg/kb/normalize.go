package kb

import "strings"

// motifCorrections maps run-together motif identifiers found in authored
// libraries to their spaced form.
var motifCorrections = map[string]string{
	"accident":             "accident",
	"christmassymbol":      "christmas symbol",
	"dangerousanimal":      "dangerous animal",
	"dangerousenvironment": "dangerous environment",
	"eastersymbol":         "easter symbol",
	"formaldress":          "formal dress",
	"guyfawkes":            "guy fawkes",
	"religioussymbol":      "religious symbol",
	"soundsystem":          "sound system",
	"thanksgivingsymbol":   "thanksgiving symbol",
	"warmclothing":         "warm clothing",
}

var themeCorrections = map[string]string{
	"fireworksnight": "fireworks night",
}

// NormalizeMotifName returns the canonical registry key for a motif name.
func NormalizeMotifName(raw string) string {
	return canonicalize(raw, motifCorrections)
}

// NormalizeThemeName returns the canonical registry key for a theme name.
func NormalizeThemeName(raw string) string {
	return canonicalize(raw, themeCorrections)
}

// canonicalize lower-cases raw and applies the correction table.
// Names absent from the table pass through after case-folding.
func canonicalize(raw string, corrections map[string]string) string {
	key := strings.ToLower(raw)
	if fixed, ok := corrections[key]; ok {
		key = fixed
	}
	return strings.ToLower(key)
}
